package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhellberg/language-study-mcp/internal/notion"
)

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func serviceContext(s *StudyService) context.Context {
	return context.WithValue(context.Background(), "service", s)
}

func TestHandlersWithoutService(t *testing.T) {
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"add_vocabulary_word":       handleAddVocabularyWord,
		"get_vocabulary_for_review": handleGetVocabularyForReview,
		"update_word_mastery":       handleUpdateWordMastery,
		"search_vocabulary":         handleSearchVocabulary,
		"extract_vocabulary":        handleExtractVocabulary,
		"get_word_details":          handleGetWordDetails,
		"mark_words_for_review":     handleMarkWordsForReview,
		"add_grammar_concept":       handleAddGrammarConcept,
		"get_grammar_concepts":      handleGetGrammarConcepts,
		"update_grammar_mastery":    handleUpdateGrammarMastery,
		"search_grammar":            handleSearchGrammar,
		"get_study_session_data":    handleGetStudySession,
		"update_study_progress":     handleUpdateStudyProgress,
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), toolRequest(nil))
			require.NoError(t, err)
			assert.Equal(t, "Error: Service not available", resultText(t, result))
		})
	}
}

func TestHandlersWithoutClient(t *testing.T) {
	// No token configured: every database-backed tool reports the client
	// as not initialized instead of erroring.
	ctx := serviceContext(NewStudyService(Config{}))

	result, err := handleAddVocabularyWord(ctx, toolRequest(map[string]interface{}{
		"word": "hej", "translation": "hello",
	}))
	require.NoError(t, err)
	assert.Equal(t, notInitializedMsg, resultText(t, result))

	result, err = handleGetVocabularyForReview(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, notInitializedMsg, resultText(t, result))
}

func TestHandleExtractWithoutClient(t *testing.T) {
	// Extraction is local; it still works without Notion credentials,
	// silently skipping the database step.
	s := &StudyService{Logger: zap.NewNop()}
	result, err := handleExtractVocabulary(serviceContext(s), toolRequest(map[string]interface{}{
		"text":            "en fantastisk upplevelse",
		"add_to_database": true,
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Identified 2 potentially challenging words")
	assert.Contains(t, text, "fantastisk, upplevelse")
}

func TestHandlerParameterValidation(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		missing string
	}{
		{"add word without word", handleAddVocabularyWord, map[string]interface{}{"translation": "hello"}, "word"},
		{"add word without translation", handleAddVocabularyWord, map[string]interface{}{"word": "hej"}, "translation"},
		{"update mastery without id", handleUpdateWordMastery, map[string]interface{}{"correct_answers": 1.0, "total_answers": 1.0}, "word_id"},
		{"update mastery without correct", handleUpdateWordMastery, map[string]interface{}{"word_id": "x", "total_answers": 1.0}, "correct_answers"},
		{"update mastery without total", handleUpdateWordMastery, map[string]interface{}{"word_id": "x", "correct_answers": 1.0}, "total_answers"},
		{"search vocabulary without query", handleSearchVocabulary, nil, "query"},
		{"extract without text", handleExtractVocabulary, nil, "text"},
		{"details without id", handleGetWordDetails, nil, "word_id"},
		{"mark without ids", handleMarkWordsForReview, nil, "word_ids"},
		{"add concept without name", handleAddGrammarConcept, map[string]interface{}{"category": "Nouns", "difficulty_level": "Beginner", "description": "d", "examples": "e"}, "concept_name"},
		{"add concept without category", handleAddGrammarConcept, map[string]interface{}{"concept_name": "n", "difficulty_level": "Beginner", "description": "d", "examples": "e"}, "category"},
		{"update grammar without id", handleUpdateGrammarMastery, map[string]interface{}{"mastery_status": "Practicing"}, "concept_id"},
		{"update grammar without status", handleUpdateGrammarMastery, map[string]interface{}{"concept_id": "x"}, "mastery_status"},
		{"search grammar without query", handleSearchGrammar, nil, "query"},
		{"progress without results", handleUpdateStudyProgress, nil, "results"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.handler(ctx, toolRequest(tc.args))
			require.NoError(t, err)
			assert.Equal(t, "Missing required parameter: "+tc.missing, resultText(t, result))
		})
	}
}

func TestHandleAddVocabularyWord(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	result, err := handleAddVocabularyWord(ctx, toolRequest(map[string]interface{}{
		"word":        "förvåning",
		"translation": "surprise",
		"difficulty":  "Hard",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Successfully added 'förvåning' to vocabulary database. ID: ")
}

func TestHandleGetVocabularyForReview(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fixedNow(t, now)
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	result, err := handleGetVocabularyForReview(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No vocabulary words are currently due for review.", resultText(t, result))

	seedWord(f, seedWordOpts{word: "mestadels", translation: "mostly", level: "Familiar", lastReviewed: daysAgo(now, 19)})

	result, err = handleGetVocabularyForReview(ctx, toolRequest(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 words due for review:")
	assert.Contains(t, text, "- **mestadels** (mostly)")
	assert.Contains(t, text, "Mastery: Familiar, Difficulty: Medium, Days overdue: 12")
}

func TestHandleUpdateWordMastery(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	id := seedWord(f, seedWordOpts{
		word: "mestadels", translation: "mostly",
		level: "Learning", reviewCount: 4, successRate: 80,
	})

	result, err := handleUpdateWordMastery(ctx, toolRequest(map[string]interface{}{
		"word_id":         id,
		"correct_answers": 5.0,
		"total_answers":   5.0,
	}))
	require.NoError(t, err)

	want := "Updated mastery for 'mestadels':\n" +
		"- New mastery level: Familiar\n" +
		"- Overall success rate: 84.0%\n" +
		"- Session success rate: 100.0%\n" +
		"- Total reviews: 5"
	assert.Equal(t, want, resultText(t, result))
}

func TestHandleMarkWordsForReview(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	id := seedWord(f, seedWordOpts{word: "mestadels", translation: "mostly", level: "Mastered"})

	result, err := handleMarkWordsForReview(ctx, toolRequest(map[string]interface{}{
		"word_ids": []interface{}{id, "no-such-page"},
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Marked 1 words for review.")
	assert.Contains(t, text, "**Successfully updated:**\n- mestadels")
	assert.Contains(t, text, "**Failed to update:**\n- ID: no-such-page")
}

func TestHandleGetGrammarConceptsGrouping(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	seedGrammar(f, "V2 word order", "Word Order", "Intermediate", "Learning")
	seedGrammar(f, "Subordinate clauses", "Word Order", "Advanced", "Practicing")
	seedGrammar(f, "Definite suffix", "", "Beginner", "Learning")

	result, err := handleGetGrammarConcepts(ctx, toolRequest(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 3 grammar concepts:")
	assert.Contains(t, text, "**Word Order:**\n- V2 word order (Intermediate, Learning)\n- Subordinate clauses (Advanced, Practicing)")
	assert.Contains(t, text, "**Uncategorized:**\n- Definite suffix (Beginner, Learning)")
}

func TestHandleGetGrammarConceptsEmpty(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	result, err := handleGetGrammarConcepts(ctx, toolRequest(map[string]interface{}{
		"category": "Phonology",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No grammar concepts found matching the criteria.", resultText(t, result))
}

func TestHandleSearchGrammarTruncatesDescription(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	long := strings.Repeat("beskrivning ", 30)
	f.addPage(testGrammarDB, notionapi.Properties{
		propConceptName:     notion.NewTitle("V2 word order"),
		propCategory:        notion.NewSelect("Word Order"),
		propDifficultyLevel: notion.NewSelect("Intermediate"),
		propDescription:     notion.NewText(long),
		propExamples:        notion.NewText("Igår åt jag frukost."),
		propMasteryStatus:   notion.NewSelect("Learning"),
	})

	result, err := handleSearchGrammar(ctx, toolRequest(map[string]interface{}{"query": "v2"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "...")
	assert.NotContains(t, text, long)
}

func TestHandleGetStudySession(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fixedNow(t, now)
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	seedWord(f, seedWordOpts{word: "mestadels", translation: "mostly", level: "New"})
	seedGrammar(f, "V2 word order", "Word Order", "Intermediate", "Learning")

	result, err := handleGetStudySession(ctx, toolRequest(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "**Study Session Prepared**")
	assert.Contains(t, text, "**Vocabulary (1 words):**\n- mestadels - mostly")
	assert.Contains(t, text, "**Grammar (1 concepts):**\n- V2 word order (Word Order)")
	assert.Contains(t, text, "Total items for review: 2")
}

func TestHandleUpdateStudyProgress(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	wordID := seedWord(f, seedWordOpts{word: "mestadels", translation: "mostly", level: "New"})
	conceptID := seedGrammar(f, "V2 word order", "Word Order", "Intermediate", "Learning")

	result, err := handleUpdateStudyProgress(ctx, toolRequest(map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{"type": "vocabulary", "id": wordID, "correct": 1.0, "total": 1.0},
			map[string]interface{}{"type": "grammar", "id": conceptID, "new_mastery": "Practicing"},
		},
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "**Study Session Progress Updated**")
	assert.Contains(t, text, "**Vocabulary (1 words updated):**\n- mestadels: Learning (100.0%)")
	assert.Contains(t, text, "**Grammar (1 concepts updated):**\n- V2 word order: Practicing")
}

func TestHandleUpdateStudyProgressDefaultsTotal(t *testing.T) {
	f := newFakeNotion(t)
	ctx := serviceContext(newTestService(t, f))

	wordID := seedWord(f, seedWordOpts{word: "mestadels", translation: "mostly", level: "New"})

	// Omitting total counts the entry as a single-question session.
	result, err := handleUpdateStudyProgress(ctx, toolRequest(map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{"type": "vocabulary", "id": wordID, "correct": 1.0},
		},
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), fmt.Sprintf("- mestadels: Learning (%.1f%%)", 100.0))
}
