package main

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the Notion credentials and database identifiers.
type Config struct {
	NotionToken       string
	VocabDatabaseID   string
	GrammarDatabaseID string
}

// LoadConfig reads configuration from an optional env file and the process
// environment. A missing env file is not an error: the variables may be set
// in the environment directly. An empty token leaves the server running but
// every tool short-circuits with a "not initialized" message.
func LoadConfig(envFile string) Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}
	return Config{
		NotionToken:       os.Getenv("NOTION_TOKEN"),
		VocabDatabaseID:   os.Getenv("VOCAB_DATABASE_ID"),
		GrammarDatabaseID: os.Getenv("GRAMMAR_DATABASE_ID"),
	}
}
