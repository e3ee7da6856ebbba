// Package main implements the language-study MCP service.
package main

import "time"

// VocabularyItem is a fully decoded row of the vocabulary database.
type VocabularyItem struct {
	ID                 string
	Word               string
	Translation        string
	PartOfSpeech       string
	Definition         string
	Difficulty         string
	MasteryLevel       string
	ExampleSentence    string
	ExampleTranslation string
	ReviewCount        int
	SuccessRate        float64
	LastReviewed       *time.Time
	SourceText         string
}

// ReviewWord is a vocabulary item selected for the review queue.
type ReviewWord struct {
	ID              string
	Word            string
	Translation     string
	MasteryLevel    string
	Difficulty      string
	DaysOverdue     int
	ExampleSentence string
}

// VocabMatch is one vocabulary search hit.
type VocabMatch struct {
	Word         string
	Translation  string
	Definition   string
	MasteryLevel string
	SuccessRate  float64
}

// MasteryUpdate summarizes the result of recording a review for a word.
type MasteryUpdate struct {
	Word            string
	NewMasteryLevel string
	NewSuccessRate  float64
	SessionRate     float64
	ReviewCount     int
}

// GrammarConcept is a decoded row of the grammar database.
type GrammarConcept struct {
	ID              string
	Name            string
	Category        string
	DifficultyLevel string
	Description     string
	Examples        string
	MasteryStatus   string
}

// GrammarUpdate summarizes a grammar mastery change.
type GrammarUpdate struct {
	Name          string
	MasteryStatus string
	NotesUpdated  bool
}

// ResetFailure records one identifier that could not be reset during a
// bulk mark-for-review call.
type ResetFailure struct {
	ID  string
	Err error
}

// ExtractResult holds the outcome of mining free text for vocabulary.
type ExtractResult struct {
	Identified   []string
	Added        []string
	AlreadyKnown []string
}

// SessionData is the combined material for one study session.
type SessionData struct {
	Vocabulary []ReviewWord
	Grammar    []GrammarConcept
}

// SessionResult is one entry of the update_study_progress payload, tagged
// as vocabulary or grammar.
type SessionResult struct {
	Type       string
	ID         string
	Correct    int
	Total      int
	NewMastery string
	Notes      string
}

// ProgressSummary reports what a completed session changed.
type ProgressSummary struct {
	Vocabulary []MasteryUpdate
	Grammar    []GrammarUpdate
}
