package main

import (
	"os"

	"github.com/vaphq/vap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
