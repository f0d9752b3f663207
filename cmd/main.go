package main

import (
	"os"

	"github.com/shivapreetham/quiz-application/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
