package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"notas/internal/auth"
	apperrors "notas/internal/errors"
	"notas/internal/model"
	"notas/internal/repository"
	"notas/internal/service"
	"notas/internal/storage"
	"notas/internal/validation"
)

// 1x1 transparent png
const seedImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type seedNote struct {
	title       string
	description string
	labels      string
	expiration  string
	image       string
}

var seedNotes = []seedNote{
	{title: "Bienvenida", description: "Primera nota de ejemplo.", labels: "demo"},
	{title: "Compras", description: "Leche, pan, cafe.", labels: "casa,compras", expiration: "2030-01-01"},
	{title: "Con imagen", description: "Nota con una imagen adjunta.", labels: "demo", image: seedImage},
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		name     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with sample notas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gormDB, closeDB, err := a.openDB(false)
			if err != nil {
				return err
			}
			defer closeDB()

			backend, err := storage.NewBackend(ctx, a.cfg.Storage)
			if err != nil {
				return err
			}

			users := repository.NewUserRepository(gormDB)
			jwtService := auth.NewJWTService(a.cfg.JWTSecret, a.cfg.JWTTTL)
			validator := validation.New()
			authService := service.NewAuthService(users, jwtService, auth.NewTokenStore(nil), nil, validator, a.logger)
			noteService := service.NewNoteService(repository.NewNoteRepository(gormDB), storage.NewImageStore(backend), validator, a.logger)

			user, err := seedUser(ctx, authService, users, name, email, password)
			if err != nil {
				return err
			}
			caller := auth.Identity{UserID: user.ID, Email: user.Email}

			created, err := seedNotasFor(ctx, noteService, caller, a.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded user %s (id %d) with %d notas\n", user.Email, user.ID, created)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Demo", "demo user name")
	cmd.Flags().StringVar(&email, "email", "demo@notas.test", "demo user email")
	cmd.Flags().StringVar(&password, "password", "password", "demo user password")
	return cmd
}

// seedUser registers the demo user, reusing it when it already exists.
func seedUser(ctx context.Context, authService service.AuthService, users repository.UserRepository, name, email, password string) (*model.User, error) {
	user, err := authService.Register(ctx, name, email, password)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		return users.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}
	return user, nil
}

func seedNotasFor(ctx context.Context, notes service.NoteService, caller auth.Identity, logger *slog.Logger) (int, error) {
	created := 0
	for _, n := range seedNotes {
		in := service.NoteInput{
			Title:          n.title,
			Description:    optional(n.description),
			Labels:         optional(n.labels),
			ExpirationDate: optional(n.expiration),
			Image:          optional(n.image),
		}

		note, err := notes.Create(ctx, caller, in)
		if err != nil {
			return created, fmt.Errorf("seed nota %q: %w", n.title, err)
		}
		logger.Debug("seeded nota", "nota_id", note.ID, "title", note.Title)
		created++
	}
	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
