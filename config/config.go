// Package config loads the process configuration from the environment.
package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	BotToken     string
	DatabaseFile string

	PlanBaseURL  string
	PollInterval time.Duration

	// ExtractorCommand is the external positioned-text extraction helper
	// (reads a PDF on stdin, writes JSON pages on stdout).
	ExtractorCommand string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	interval, err := time.ParseDuration(getEnv("PLAN_POLL_INTERVAL", "5m"))
	if err != nil {
		log.Fatalf("invalid PLAN_POLL_INTERVAL: %v", err)
	}
	return &Config{
		BotToken:         mustEnv("BOT_API_TOKEN"),
		DatabaseFile:     mustEnv("DATABASE_FILE"),
		PlanBaseURL:      getEnv("PLAN_BASE_URL", "https://geschuetzt.bszet.de"),
		PollInterval:     interval,
		ExtractorCommand: getEnv("EXTRACTOR_CMD", "vertretungsplan-extract"),
	}
}
