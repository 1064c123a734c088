package main

import (
	"fmt"
	"os"
)

// @title Notas API
// @version 1.0
// @description Multi-tenant notes API with bearer token authentication and base64 image uploads.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
