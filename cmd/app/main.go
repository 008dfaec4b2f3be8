package main

import (
	"kargo/cmd"

	"github.com/labstack/gommon/log"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		log.Fatalf("kargo: %v", err)
	}
}
