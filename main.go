package main

import (
	"os"

	"github.com/dominikschlosser/av-verifier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
