package main

import (
	"os"

	"github.com/tu613/vet-learning-app/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
