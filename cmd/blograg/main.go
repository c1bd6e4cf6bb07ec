package main

import (
	"os"

	"blograg/cmd/blograg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
