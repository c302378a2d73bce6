package main

import (
	"os"

	"github.com/joseph-ayodele/coi-quote/cmd/coi-quote/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
