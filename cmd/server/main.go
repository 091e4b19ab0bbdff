package main

import (
	"log"

	"github.com/singh-automation/winscope/internal/api"
	"github.com/singh-automation/winscope/internal/auth"
	"github.com/singh-automation/winscope/internal/config"
	"github.com/singh-automation/winscope/internal/qualify"
	"github.com/singh-automation/winscope/internal/scan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	profile, err := qualify.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("Failed to load capability profile: %v", err)
	}

	scanner, err := scan.NewScanner(profile, cfg.SAMAPIKey)
	if err != nil {
		log.Fatalf("Failed to build scanner: %v", err)
	}

	srv := api.NewServer(cfg, scanner, auth.NewService())
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
