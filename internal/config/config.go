package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DriverMySQL selects the MySQL GORM driver.
	DriverMySQL = "mysql"
	// DriverSQLite selects the pure Go SQLite GORM driver.
	DriverSQLite = "sqlite"

	// StorageLocal keeps images on the local filesystem.
	StorageLocal = "local"
	// StorageS3 keeps images in an S3 compatible bucket.
	StorageS3 = "s3"

	defaultJWTSecret = "change-me"
)

// Config holds application level configuration. Values come from defaults,
// then an optional TOML file, then environment variables.
type Config struct {
	ServerPort  string        `toml:"server_port"`
	DBDriver    string        `toml:"db_driver"`
	MySQLDSN    string        `toml:"mysql_dsn"`
	SQLitePath  string        `toml:"sqlite_path"`
	RedisAddr   string        `toml:"redis_addr"`
	RedisDB     int           `toml:"redis_db"`
	RedisPass   string        `toml:"redis_password"`
	JWTSecret   string        `toml:"jwt_secret"`
	JWTTTL      time.Duration `toml:"jwt_ttl"`
	LogLevel    string        `toml:"log_level"`
	LogFormat   string        `toml:"log_format"`
	SwaggerHost string        `toml:"swagger_host"`
	ResetDB     bool          `toml:"reset_db"`
	Storage     StorageConfig `toml:"storage"`
}

// StorageConfig configures the image blob store.
type StorageConfig struct {
	Driver    string   `toml:"driver"`
	Root      string   `toml:"root"`
	PublicURL string   `toml:"public_url"`
	S3        S3Config `toml:"s3"`
}

// S3Config configures the S3 backend; Endpoint is set for MinIO and friends.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerPort: "8080",
		DBDriver:   DriverMySQL,
		MySQLDSN:   "user:password@tcp(localhost:3306)/notas?charset=utf8mb4&parseTime=True&loc=Local",
		SQLitePath: "notas.db",
		RedisAddr:  "localhost:6379",
		JWTSecret:  defaultJWTSecret,
		JWTTTL:     60 * time.Minute,
		LogLevel:   "info",
		LogFormat:  "text",
		Storage: StorageConfig{
			Driver:    StorageLocal,
			Root:      "storage/app/public",
			PublicURL: "http://localhost:8080",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
	}
}

// Load builds Config from .env, the TOML file at path (if non-empty) and the
// environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("NOTAS_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTTTL = getEnvDuration("JWT_TTL", cfg.JWTTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.ResetDB = getEnvBool("RESET_DB", cfg.ResetDB)

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.Root = getEnv("STORAGE_ROOT", cfg.Storage.Root)
	cfg.Storage.PublicURL = getEnv("PUBLIC_URL", cfg.Storage.PublicURL)
	cfg.Storage.S3.Bucket = getEnv("S3_BUCKET", cfg.Storage.S3.Bucket)
	cfg.Storage.S3.Region = getEnv("S3_REGION", cfg.Storage.S3.Region)
	cfg.Storage.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.S3.Endpoint)
	cfg.Storage.S3.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.S3.AccessKey)
	cfg.Storage.S3.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.S3.SecretKey)
	cfg.Storage.S3.PublicURL = getEnv("S3_PUBLIC_URL", cfg.Storage.S3.PublicURL)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown db driver %q", c.DBDriver)
	}
	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.Root == "" {
			return fmt.Errorf("storage root is required for the local driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
