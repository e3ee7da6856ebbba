package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const notInitializedMsg = "Error: Notion client not initialized"

// serviceFromContext fetches the StudyService placed in the context at
// registration time.
func serviceFromContext(ctx context.Context) *StudyService {
	s, ok := ctx.Value("service").(*StudyService)
	if !ok {
		return nil
	}
	return s
}

// stringArg extracts a required string parameter.
func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok && v != ""
}

// stringSliceArg extracts an optional array-of-strings parameter.
func stringSliceArg(request mcp.CallToolRequest, name string) []string {
	var values []string
	if raw, ok := request.Params.Arguments[name].([]interface{}); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}
	return values
}

// intArg extracts an optional number parameter with a default.
func intArg(request mcp.CallToolRequest, name string, def int) int {
	if v, ok := request.Params.Arguments[name].(float64); ok {
		return int(v)
	}
	return def
}

// handleAddVocabularyWord handles the add_vocabulary_word tool request by
// creating a new vocabulary entry with fresh review statistics.
func handleAddVocabularyWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	word, ok := stringArg(request, "word")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: word"), nil
	}
	translation, ok := stringArg(request, "translation")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: translation"), nil
	}

	params := AddWordParams{
		Word:        word,
		Translation: translation,
	}
	params.PartOfSpeech, _ = request.Params.Arguments["part_of_speech"].(string)
	params.Definition, _ = request.Params.Arguments["definition"].(string)
	params.ExampleSentence, _ = request.Params.Arguments["example_sentence"].(string)
	params.ExampleTranslation, _ = request.Params.Arguments["example_translation"].(string)
	params.Difficulty, _ = request.Params.Arguments["difficulty"].(string)
	params.SourceText, _ = request.Params.Arguments["source_text"].(string)

	id, err := s.AddWord(ctx, params)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error adding vocabulary word: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully added '%s' to vocabulary database. ID: %s", word, id)), nil
}

// handleGetVocabularyForReview handles the get_vocabulary_for_review tool
// request by listing the most overdue words, capped by the limit.
func handleGetVocabularyForReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	limit := intArg(request, "limit", 20)

	words, err := s.WordsForReview(ctx, limit)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error getting vocabulary for review: %v", err)), nil
	}
	if len(words) == 0 {
		return mcp.NewToolResultText("No vocabulary words are currently due for review."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d words due for review:\n\n", len(words))
	for _, w := range words {
		fmt.Fprintf(&b, "- **%s** (%s)\n", w.Word, w.Translation)
		fmt.Fprintf(&b, "  - Mastery: %s, Difficulty: %s, Days overdue: %d\n", w.MasteryLevel, w.Difficulty, w.DaysOverdue)
		if w.ExampleSentence != "" {
			fmt.Fprintf(&b, "  - Example: %s\n", w.ExampleSentence)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleUpdateWordMastery handles the update_word_mastery tool request by
// recording one review session for a word.
func handleUpdateWordMastery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	wordID, ok := stringArg(request, "word_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: word_id"), nil
	}
	correctFloat, ok := request.Params.Arguments["correct_answers"].(float64)
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: correct_answers"), nil
	}
	totalFloat, ok := request.Params.Arguments["total_answers"].(float64)
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: total_answers"), nil
	}

	update, err := s.UpdateWordMastery(ctx, wordID, int(correctFloat), int(totalFloat))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error updating word mastery: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Updated mastery for '%s':\n", update.Word)
	fmt.Fprintf(&b, "- New mastery level: %s\n", update.NewMasteryLevel)
	fmt.Fprintf(&b, "- Overall success rate: %.1f%%\n", update.NewSuccessRate)
	fmt.Fprintf(&b, "- Session success rate: %.1f%%\n", update.SessionRate)
	fmt.Fprintf(&b, "- Total reviews: %d", update.ReviewCount)
	return mcp.NewToolResultText(b.String()), nil
}

// handleSearchVocabulary handles the search_vocabulary tool request.
func handleSearchVocabulary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	query, ok := stringArg(request, "query")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: query"), nil
	}

	matches, err := s.SearchVocabulary(ctx, query)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error searching vocabulary: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No vocabulary entries found matching '%s'", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d vocabulary entries:\n\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&b, "- **%s** - %s\n", m.Word, m.Translation)
		if m.Definition != "" {
			fmt.Fprintf(&b, "  - Definition: %s\n", m.Definition)
		}
		fmt.Fprintf(&b, "  - Mastery: %s, Success rate: %.1f%%\n\n", m.MasteryLevel, m.SuccessRate)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleExtractVocabulary handles the extract_vocabulary_from_text tool
// request. Extraction itself is local; the database is only consulted when
// add_to_database is set and the client is configured.
func handleExtractVocabulary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	text, ok := stringArg(request, "text")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: text"), nil
	}
	addToDatabase, _ := request.Params.Arguments["add_to_database"].(bool)
	add := addToDatabase && s.Ready()

	result, err := s.ExtractVocabulary(ctx, text, add)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error processing words: %v", err)), nil
	}
	if len(result.Identified) == 0 {
		return mcp.NewToolResultText("No challenging words identified in the text."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Identified %d potentially challenging words:\n\n", len(result.Identified))
	if !add {
		fmt.Fprintf(&b, "**Words identified:** %s\n\n", strings.Join(result.Identified, ", "))
	}
	if len(result.AlreadyKnown) > 0 {
		fmt.Fprintf(&b, "**Already in database:** %s\n\n", strings.Join(result.AlreadyKnown, ", "))
	}
	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "**Added to database:** %s\n", strings.Join(result.Added, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetWordDetails handles the get_word_details tool request.
func handleGetWordDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	wordID, ok := stringArg(request, "word_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: word_id"), nil
	}

	item, err := s.WordDetails(ctx, wordID)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error getting word details: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", item.Word)
	fmt.Fprintf(&b, "- **Translation:** %s\n", item.Translation)
	fmt.Fprintf(&b, "- **Part of Speech:** %s\n", item.PartOfSpeech)
	if item.Definition != "" {
		fmt.Fprintf(&b, "- **Definition:** %s\n", item.Definition)
	}
	fmt.Fprintf(&b, "- **Difficulty:** %s\n", item.Difficulty)
	fmt.Fprintf(&b, "- **Mastery Level:** %s\n", item.MasteryLevel)
	if item.ExampleSentence != "" {
		b.WriteString("\n**Example:**\n")
		fmt.Fprintf(&b, "- Swedish: %s\n", item.ExampleSentence)
		if item.ExampleTranslation != "" {
			fmt.Fprintf(&b, "- English: %s\n", item.ExampleTranslation)
		}
	}
	b.WriteString("\n**Statistics:**\n")
	fmt.Fprintf(&b, "- Review Count: %d\n", item.ReviewCount)
	fmt.Fprintf(&b, "- Success Rate: %.1f%%\n", item.SuccessRate)
	if item.LastReviewed != nil {
		fmt.Fprintf(&b, "- Last Reviewed: %s\n", item.LastReviewed.Format("2006-01-02"))
	}
	if item.SourceText != "" {
		fmt.Fprintf(&b, "\n**Source:** %s\n", item.SourceText)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleMarkWordsForReview handles the mark_words_for_review tool request.
// Per-item failures are reported but never abort the batch.
func handleMarkWordsForReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	wordIDs := stringSliceArg(request, "word_ids")
	if len(wordIDs) == 0 {
		return mcp.NewToolResultText("Missing required parameter: word_ids"), nil
	}

	updated, failed := s.MarkWordsForReview(ctx, wordIDs)

	var b strings.Builder
	fmt.Fprintf(&b, "Marked %d words for review.\n", len(updated))
	if len(updated) > 0 {
		b.WriteString("\n**Successfully updated:**\n")
		for _, word := range updated {
			fmt.Fprintf(&b, "- %s\n", word)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n**Failed to update:**\n")
		for _, f := range failed {
			fmt.Fprintf(&b, "- ID: %s - %v\n", f.ID, f.Err)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleAddGrammarConcept handles the add_grammar_concept tool request.
func handleAddGrammarConcept(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	params := AddGrammarParams{}
	var ok bool
	if params.Name, ok = stringArg(request, "concept_name"); !ok {
		return mcp.NewToolResultText("Missing required parameter: concept_name"), nil
	}
	if params.Category, ok = stringArg(request, "category"); !ok {
		return mcp.NewToolResultText("Missing required parameter: category"), nil
	}
	if params.DifficultyLevel, ok = stringArg(request, "difficulty_level"); !ok {
		return mcp.NewToolResultText("Missing required parameter: difficulty_level"), nil
	}
	if params.Description, ok = stringArg(request, "description"); !ok {
		return mcp.NewToolResultText("Missing required parameter: description"), nil
	}
	if params.Examples, ok = stringArg(request, "examples"); !ok {
		return mcp.NewToolResultText("Missing required parameter: examples"), nil
	}
	params.PracticeNotes, _ = request.Params.Arguments["practice_notes"].(string)

	id, err := s.AddGrammarConcept(ctx, params)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error adding grammar concept: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully added grammar concept '%s'. ID: %s", params.Name, id)), nil
}

// handleGetGrammarConcepts handles the get_grammar_concepts tool request.
// Multiple filters combine with AND; no filters fetch everything.
func handleGetGrammarConcepts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	filter := GrammarFilter{}
	filter.Category, _ = request.Params.Arguments["category"].(string)
	filter.Difficulty, _ = request.Params.Arguments["difficulty"].(string)
	filter.MasteryStatus, _ = request.Params.Arguments["mastery_status"].(string)

	concepts, err := s.GrammarConcepts(ctx, filter)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error getting grammar concepts: %v", err)), nil
	}
	if len(concepts) == 0 {
		return mcp.NewToolResultText("No grammar concepts found matching the criteria."), nil
	}

	// Group by category, preserving first-seen order.
	var categories []string
	byCategory := map[string][]GrammarConcept{}
	for _, c := range concepts {
		category := c.Category
		if category == "" {
			category = "Uncategorized"
		}
		if _, seen := byCategory[category]; !seen {
			categories = append(categories, category)
		}
		byCategory[category] = append(byCategory[category], c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d grammar concepts:\n\n", len(concepts))
	for _, category := range categories {
		fmt.Fprintf(&b, "**%s:**\n", category)
		for _, c := range byCategory[category] {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", c.Name, c.DifficultyLevel, c.MasteryStatus)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleUpdateGrammarMastery handles the update_grammar_mastery tool request.
func handleUpdateGrammarMastery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	conceptID, ok := stringArg(request, "concept_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: concept_id"), nil
	}
	masteryStatus, ok := stringArg(request, "mastery_status")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: mastery_status"), nil
	}
	practiceNotes, _ := request.Params.Arguments["practice_notes"].(string)

	update, err := s.UpdateGrammarMastery(ctx, conceptID, masteryStatus, practiceNotes)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error updating grammar mastery: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Updated grammar concept '%s':\n", update.Name)
	fmt.Fprintf(&b, "- New mastery status: %s\n", update.MasteryStatus)
	if update.NotesUpdated {
		b.WriteString("- Practice notes updated\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleSearchGrammar handles the search_grammar tool request.
func handleSearchGrammar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	query, ok := stringArg(request, "query")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: query"), nil
	}

	matches, err := s.SearchGrammar(ctx, query)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error searching grammar: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No grammar concepts found matching '%s'", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d grammar concepts:\n\n", len(matches))
	for _, c := range matches {
		fmt.Fprintf(&b, "**%s**\n", c.Name)
		fmt.Fprintf(&b, "- Category: %s\n", c.Category)
		fmt.Fprintf(&b, "- Difficulty: %s\n", c.DifficultyLevel)
		fmt.Fprintf(&b, "- Mastery: %s\n", c.MasteryStatus)
		description := c.Description
		if runes := []rune(description); len(runes) > 100 {
			description = string(runes[:100]) + "..."
		}
		fmt.Fprintf(&b, "- Description: %s\n\n", description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetStudySession handles the get_study_session_data tool request.
func handleGetStudySession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	vocabCount := intArg(request, "vocab_count", 10)
	grammarCount := intArg(request, "grammar_count", 5)

	session, err := s.StudySession(ctx, vocabCount, grammarCount)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error preparing study session: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString("**Study Session Prepared**\n\n")
	if len(session.Vocabulary) > 0 {
		fmt.Fprintf(&b, "**Vocabulary (%d words):**\n", len(session.Vocabulary))
		for _, w := range session.Vocabulary {
			fmt.Fprintf(&b, "- %s - %s\n", w.Word, w.Translation)
		}
		b.WriteString("\n")
	}
	if len(session.Grammar) > 0 {
		fmt.Fprintf(&b, "**Grammar (%d concepts):**\n", len(session.Grammar))
		for _, c := range session.Grammar {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.Category)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total items for review: %d", len(session.Vocabulary)+len(session.Grammar))
	return mcp.NewToolResultText(b.String()), nil
}

// handleUpdateStudyProgress handles the update_study_progress tool
// request: a list of per-item session results, each routed to the
// vocabulary or grammar update logic.
func handleUpdateStudyProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := serviceFromContext(ctx)
	if s == nil {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	if !s.Ready() {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	raw, ok := request.Params.Arguments["results"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultText("Missing required parameter: results"), nil
	}

	var results []SessionResult
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		result := SessionResult{Total: 1}
		result.Type, _ = entry["type"].(string)
		result.ID, _ = entry["id"].(string)
		if v, ok := entry["correct"].(float64); ok {
			result.Correct = int(v)
		}
		if v, ok := entry["total"].(float64); ok {
			result.Total = int(v)
		}
		result.NewMastery, _ = entry["new_mastery"].(string)
		result.Notes, _ = entry["notes"].(string)
		results = append(results, result)
	}

	summary, err := s.UpdateStudyProgress(ctx, results)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error updating study progress: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString("**Study Session Progress Updated**\n\n")
	if len(summary.Vocabulary) > 0 {
		fmt.Fprintf(&b, "**Vocabulary (%d words updated):**\n", len(summary.Vocabulary))
		for _, u := range summary.Vocabulary {
			fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", u.Word, u.NewMasteryLevel, u.NewSuccessRate)
		}
		b.WriteString("\n")
	}
	if len(summary.Grammar) > 0 {
		fmt.Fprintf(&b, "**Grammar (%d concepts updated):**\n", len(summary.Grammar))
		for _, u := range summary.Grammar {
			fmt.Fprintf(&b, "- %s: %s\n", u.Name, u.MasteryStatus)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
