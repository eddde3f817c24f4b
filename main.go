package main

import (
	"os"

	"github.com/wrenchworks/dispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
