package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Vocabulary database schema. Field names and shapes are a fixed contract
// with the remote database: a rename there makes the accessor return
// defaults, it does not error.
const (
	propWord               = "Word/Phrase"
	propTranslation        = "English Translation"
	propPartOfSpeech       = "Part of Speech"
	propDefinition         = "Definition"
	propDifficulty         = "Difficulty"
	propExampleSentence    = "Example Sentence"
	propExampleTranslation = "Example Translation"
	propMasteryLevel       = "Mastery Level"
	propReviewCount        = "Review Count"
	propSuccessRate        = "Success Rate"
	propLastReviewed       = "Last Reviewed"
	propDateAdded          = "Date Added"
	propSourceText         = "Source Text"
)

// Grammar database schema.
const (
	propConceptName     = "Concept Name"
	propCategory        = "Category"
	propDifficultyLevel = "Difficulty Level"
	propDescription     = "Description"
	propExamples        = "Examples"
	propPracticeNotes   = "Practice Notes"
	propMasteryStatus   = "Mastery Status"
)

// StudyService runs all vocabulary, grammar and study-session operations
// against the two Notion databases.
type StudyService struct {
	Client    *notionapi.Client
	VocabDB   notionapi.DatabaseID
	GrammarDB notionapi.DatabaseID
	Logger    *zap.Logger
}

// NewStudyService creates a StudyService from configuration. Without a
// token no Notion client is created and Ready reports false.
func NewStudyService(cfg Config) *StudyService {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	logger, err := logConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		fmt.Printf("Error initializing zap logger: %v. Falling back to no-op logger.\n", err)
		logger = zap.NewNop()
	}

	svc := &StudyService{
		VocabDB:   notionapi.DatabaseID(cfg.VocabDatabaseID),
		GrammarDB: notionapi.DatabaseID(cfg.GrammarDatabaseID),
		Logger:    logger,
	}
	if cfg.NotionToken != "" {
		svc.Client = notionapi.NewClient(notionapi.Token(cfg.NotionToken))
	}
	return svc
}

// Ready reports whether the Notion client was configured. Without a token
// every operation short-circuits instead of calling out.
func (s *StudyService) Ready() bool {
	return s.Client != nil
}

// round1 rounds to one decimal place, matching what is stored in Notion.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// containsFold reports whether the already lower-cased query occurs in any
// of the fields, ignoring case.
func containsFold(query string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Variable to allow mocking time.Now in tests
var timeNow = time.Now
