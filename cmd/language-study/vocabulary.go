package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/mhellberg/language-study-mcp/internal/notion"
	"github.com/mhellberg/language-study-mcp/internal/scheduler"
)

// AddWordParams carries the add_vocabulary_word tool inputs.
type AddWordParams struct {
	Word               string
	Translation        string
	PartOfSpeech       string
	Definition         string
	ExampleSentence    string
	ExampleTranslation string
	Difficulty         string
	SourceText         string
}

// AddWord creates a vocabulary page with fresh review statistics and
// returns its Notion page identifier.
func (s *StudyService) AddWord(ctx context.Context, p AddWordParams) (string, error) {
	if p.PartOfSpeech == "" {
		p.PartOfSpeech = "Noun"
	}
	if p.Difficulty == "" {
		p.Difficulty = "Medium"
	}
	s.Logger.Debug("AddWord called", zap.String("word", p.Word), zap.String("difficulty", p.Difficulty))

	now := timeNow()
	props := notionapi.Properties{
		propWord:         notion.NewTitle(p.Word),
		propTranslation:  notion.NewText(p.Translation),
		propPartOfSpeech: notion.NewSelect(p.PartOfSpeech),
		propDifficulty:   notion.NewSelect(p.Difficulty),
		propDateAdded:    notion.NewDate(&now),
		propMasteryLevel: notion.NewSelect(string(scheduler.LevelNew)),
		propReviewCount:  notion.NewNumber(0),
		propSuccessRate:  notion.NewNumber(0),
	}
	if p.Definition != "" {
		props[propDefinition] = notion.NewText(p.Definition)
	}
	if p.ExampleSentence != "" {
		props[propExampleSentence] = notion.NewText(p.ExampleSentence)
	}
	if p.ExampleTranslation != "" {
		props[propExampleTranslation] = notion.NewText(p.ExampleTranslation)
	}
	if p.SourceText != "" {
		props[propSourceText] = notion.NewText(p.SourceText)
	}

	page, err := s.Client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: s.VocabDB},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("creating vocabulary page: %w", err)
	}
	s.Logger.Debug("Vocabulary page created", zap.String("page_id", string(page.ID)))
	return string(page.ID), nil
}

// WordsForReview fetches the whole vocabulary database, keeps the items
// whose review interval has lapsed, and returns the most overdue first,
// truncated to limit. Items never reviewed sort ahead of everything.
func (s *StudyService) WordsForReview(ctx context.Context, limit int) ([]ReviewWord, error) {
	pages, err := notion.QueryAll(ctx, s.Client, s.VocabDB, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary database: %w", err)
	}
	s.Logger.Debug("WordsForReview fetched pages", zap.Int("count", len(pages)))

	now := timeNow()
	var due []ReviewWord
	for i := range pages {
		page := &pages[i]
		level := scheduler.Level(notion.SelectName(page, propMasteryLevel))
		overdue := scheduler.DaysOverdueAt(notion.Date(page, propLastReviewed), level, now)
		if overdue <= 0 {
			continue
		}
		due = append(due, ReviewWord{
			ID:              string(page.ID),
			Word:            notion.Title(page, propWord),
			Translation:     notion.Text(page, propTranslation),
			MasteryLevel:    string(level),
			Difficulty:      notion.SelectName(page, propDifficulty),
			DaysOverdue:     overdue,
			ExampleSentence: notion.Text(page, propExampleSentence),
		})
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DaysOverdue > due[j].DaysOverdue
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// UpdateWordMastery records one review session for a word: the review
// count is incremented, the session result folds into the weighted success
// rate, the mastery level is recomputed and Last Reviewed is stamped.
func (s *StudyService) UpdateWordMastery(ctx context.Context, pageID string, correct, total int) (MasteryUpdate, error) {
	page, err := s.Client.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return MasteryUpdate{}, fmt.Errorf("retrieving word %s: %w", pageID, err)
	}

	word := notion.Title(page, propWord)
	currentCount := int(notion.Number(page, propReviewCount))
	currentRate := notion.Number(page, propSuccessRate)

	sessionRate := 0.0
	if total > 0 {
		sessionRate = float64(correct) / float64(total) * 100
	}
	newCount := currentCount + 1
	newRate := scheduler.WeightedSuccessRate(currentRate, currentCount, sessionRate)
	newLevel := scheduler.NextLevel(newRate, newCount)

	s.Logger.Debug("UpdateWordMastery computed",
		zap.String("word", word),
		zap.Float64("session_rate", sessionRate),
		zap.Float64("new_rate", newRate),
		zap.String("new_level", string(newLevel)))

	now := timeNow()
	_, err = s.Client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			propMasteryLevel: notion.NewSelect(string(newLevel)),
			propReviewCount:  notion.NewNumber(float64(newCount)),
			propSuccessRate:  notion.NewNumber(round1(newRate)),
			propLastReviewed: notion.NewDate(&now),
		},
	})
	if err != nil {
		return MasteryUpdate{}, fmt.Errorf("updating word %s: %w", pageID, err)
	}

	return MasteryUpdate{
		Word:            word,
		NewMasteryLevel: string(newLevel),
		NewSuccessRate:  round1(newRate),
		SessionRate:     round1(sessionRate),
		ReviewCount:     newCount,
	}, nil
}

// SearchVocabulary fetches the whole collection and matches the query
// case-insensitively against word, translation and definition.
func (s *StudyService) SearchVocabulary(ctx context.Context, query string) ([]VocabMatch, error) {
	pages, err := notion.QueryAll(ctx, s.Client, s.VocabDB, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary database: %w", err)
	}

	q := strings.ToLower(query)
	var matches []VocabMatch
	for i := range pages {
		page := &pages[i]
		word := notion.Title(page, propWord)
		translation := notion.Text(page, propTranslation)
		definition := notion.Text(page, propDefinition)
		if !containsFold(q, word, translation, definition) {
			continue
		}
		matches = append(matches, VocabMatch{
			Word:         word,
			Translation:  translation,
			Definition:   definition,
			MasteryLevel: notion.SelectName(page, propMasteryLevel),
			SuccessRate:  notion.Number(page, propSuccessRate),
		})
	}
	return matches, nil
}

// WordDetails retrieves and decodes one vocabulary page in full.
func (s *StudyService) WordDetails(ctx context.Context, pageID string) (VocabularyItem, error) {
	page, err := s.Client.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return VocabularyItem{}, fmt.Errorf("retrieving word %s: %w", pageID, err)
	}
	return VocabularyItem{
		ID:                 string(page.ID),
		Word:               notion.Title(page, propWord),
		Translation:        notion.Text(page, propTranslation),
		PartOfSpeech:       notion.SelectName(page, propPartOfSpeech),
		Definition:         notion.Text(page, propDefinition),
		Difficulty:         notion.SelectName(page, propDifficulty),
		MasteryLevel:       notion.SelectName(page, propMasteryLevel),
		ExampleSentence:    notion.Text(page, propExampleSentence),
		ExampleTranslation: notion.Text(page, propExampleTranslation),
		ReviewCount:        int(notion.Number(page, propReviewCount)),
		SuccessRate:        notion.Number(page, propSuccessRate),
		LastReviewed:       notion.Date(page, propLastReviewed),
		SourceText:         notion.Text(page, propSourceText),
	}, nil
}

// MarkWordsForReview clears Last Reviewed on each page so the review queue
// picks the words up immediately. Failures are collected per identifier;
// one bad identifier never aborts the batch.
func (s *StudyService) MarkWordsForReview(ctx context.Context, ids []string) (updated []string, failed []ResetFailure) {
	for _, id := range ids {
		page, err := s.Client.Page.Get(ctx, notionapi.PageID(id))
		if err != nil {
			s.Logger.Warn("MarkWordsForReview: retrieve failed", zap.String("page_id", id), zap.Error(err))
			failed = append(failed, ResetFailure{ID: id, Err: err})
			continue
		}
		word := notion.Title(page, propWord)

		_, err = s.Client.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
			Properties: notionapi.Properties{
				propLastReviewed: notion.NewDate(nil),
			},
		})
		if err != nil {
			s.Logger.Warn("MarkWordsForReview: update failed", zap.String("page_id", id), zap.Error(err))
			failed = append(failed, ResetFailure{ID: id, Err: err})
			continue
		}
		updated = append(updated, word)
	}
	return updated, failed
}
