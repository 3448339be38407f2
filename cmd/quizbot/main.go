package main

import (
	"os"

	"github.com/iamwavecut/quizbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
