package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mhellberg/language-study-mcp/internal/scheduler"
)

// StudySession gathers a mixed batch for one sitting: due vocabulary from
// the review queue and grammar concepts still marked "Learning", each
// capped by the caller.
func (s *StudyService) StudySession(ctx context.Context, vocabCount, grammarCount int) (SessionData, error) {
	vocab, err := s.WordsForReview(ctx, vocabCount)
	if err != nil {
		return SessionData{}, err
	}

	grammar, err := s.GrammarConcepts(ctx, GrammarFilter{MasteryStatus: string(scheduler.LevelLearning)})
	if err != nil {
		return SessionData{}, err
	}
	if grammarCount > 0 && len(grammar) > grammarCount {
		grammar = grammar[:grammarCount]
	}

	s.Logger.Debug("StudySession prepared",
		zap.Int("vocabulary", len(vocab)),
		zap.Int("grammar", len(grammar)))
	return SessionData{Vocabulary: vocab, Grammar: grammar}, nil
}

// UpdateStudyProgress routes each session result to the vocabulary or
// grammar update logic. Entries with an unknown type are skipped.
func (s *StudyService) UpdateStudyProgress(ctx context.Context, results []SessionResult) (ProgressSummary, error) {
	var summary ProgressSummary
	for _, r := range results {
		switch r.Type {
		case "vocabulary":
			update, err := s.UpdateWordMastery(ctx, r.ID, r.Correct, r.Total)
			if err != nil {
				return ProgressSummary{}, fmt.Errorf("vocabulary result %s: %w", r.ID, err)
			}
			summary.Vocabulary = append(summary.Vocabulary, update)
		case "grammar":
			mastery := r.NewMastery
			if mastery == "" {
				mastery = string(scheduler.LevelLearning)
			}
			update, err := s.UpdateGrammarMastery(ctx, r.ID, mastery, r.Notes)
			if err != nil {
				return ProgressSummary{}, fmt.Errorf("grammar result %s: %w", r.ID, err)
			}
			summary.Grammar = append(summary.Grammar, update)
		default:
			s.Logger.Warn("UpdateStudyProgress: unknown result type", zap.String("type", r.Type), zap.String("id", r.ID))
		}
	}
	return summary, nil
}
