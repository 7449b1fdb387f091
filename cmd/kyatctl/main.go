package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/kyat/internal/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.NewRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
