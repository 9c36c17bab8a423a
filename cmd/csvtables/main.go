package main

import (
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvtables/internal/cli"
	_ "github.com/JonMunkholm/csvtables/internal/core/shapes" // Register record shapes
)

func main() {
	// Environment variables take precedence over .env in the CLI.
	_ = godotenv.Load()

	cli.Execute()
}
