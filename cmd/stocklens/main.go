package main

import (
	"os"

	"stocklens/cmd/stocklens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
