package main

import (
	"os"

	"github.com/notastransf/notastransf/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
