package main

import (
	"os"

	"github.com/prasad8mhatre/smart-recruiter-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
