package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rcliao/eunoia-signals/internal/cli"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
