package main

import (
	"os"

	"github.com/bankstream/bankstream/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
