package main

import (
	"os"

	"github.com/dan1sh0/Baseera-AI/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
