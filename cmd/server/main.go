package main

import (
	"log"

	"collabs/internal/config"
	"collabs/internal/server"
)

func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize server: %s", err)
	}

	s.Run()
}
