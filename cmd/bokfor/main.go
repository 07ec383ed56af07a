package main

import (
	"os"

	"github.com/bokfor-dev/bokfor/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
