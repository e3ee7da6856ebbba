package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const languageStudyServerInfo = `
This server manages a Swedish language learning workflow backed by two
Notion databases: one for vocabulary and one for grammar concepts.

Typical workflow:

1. CAPTURE:
   - Add new vocabulary with add_vocabulary_word as words come up
   - Paste Swedish text into extract_vocabulary_from_text to mine it for
     challenging words and optionally add them in one step
   - Record grammar topics with add_grammar_concept

2. REVIEW:
   - Call get_study_session_data to prepare a mixed session of due
     vocabulary and grammar concepts still being learned
   - Quiz the student on each item; never show the translation before
     they have attempted an answer
   - Words become due again based on mastery: New daily, Learning every
     3 days, Familiar weekly, Mastered monthly

3. RECORD:
   - After a session, submit all results at once with
     update_study_progress, or per word with update_word_mastery
   - Success rates fold into a running average; mastery levels move
     automatically as the average and review count cross thresholds
   - Use mark_words_for_review to force words back into the queue

Search and detail tools (search_vocabulary, search_grammar,
get_word_details, get_grammar_concepts) support browsing the databases
during conversation.
`

func main() {
	envFile := flag.String("env", ".env", "Path to environment file with Notion credentials")
	flag.Parse()

	cfg := LoadConfig(*envFile)
	svc := NewStudyService(cfg)
	if !svc.Ready() {
		log.Printf("Warning: NOTION_TOKEN not set; tools will report the client as not initialized")
	}

	s := server.NewMCPServer(
		"Language Study MCP",
		"1.0.0",
		server.WithInstructions(languageStudyServerInfo),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	// Create context with the service for tool handlers
	ctx := context.WithValue(context.Background(), "service", svc)

	addVocabularyWordTool := mcp.NewTool("add_vocabulary_word",
		mcp.WithDescription(
			"Add a new Swedish vocabulary word to the database. "+
				"The word starts at mastery level New with zero reviews and "+
				"enters the review queue immediately.",
		),
		mcp.WithString("word",
			mcp.Required(),
			mcp.Description("The Swedish word or phrase"),
		),
		mcp.WithString("translation",
			mcp.Required(),
			mcp.Description("English translation"),
		),
		mcp.WithString("part_of_speech",
			mcp.Description("Part of speech: Noun, Verb, Adjective, Adverb, Preposition, Conjunction, Pronoun, Interjection (default Noun)"),
		),
		mcp.WithString("definition",
			mcp.Description("Definition or usage notes"),
		),
		mcp.WithString("example_sentence",
			mcp.Description("Example sentence in Swedish"),
		),
		mcp.WithString("example_translation",
			mcp.Description("English translation of the example sentence"),
		),
		mcp.WithString("difficulty",
			mcp.Description("Difficulty: Easy, Medium or Hard (default Medium)"),
		),
		mcp.WithString("source_text",
			mcp.Description("Text the word was encountered in"),
		),
	)

	getVocabularyForReviewTool := mcp.NewTool("get_vocabulary_for_review",
		mcp.WithDescription(
			"Get vocabulary words due for review, most overdue first. "+
				"Words are due when the interval for their mastery level has "+
				"lapsed since the last review; never-reviewed words always "+
				"come first.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of words to return (default 20)"),
		),
	)

	updateWordMasteryTool := mcp.NewTool("update_word_mastery",
		mcp.WithDescription(
			"Record the result of one review session for a word. The "+
				"session score folds into the running success rate and the "+
				"mastery level is recomputed.",
		),
		mcp.WithString("word_id",
			mcp.Required(),
			mcp.Description("Notion page ID of the word"),
		),
		mcp.WithNumber("correct_answers",
			mcp.Required(),
			mcp.Description("Number of correct answers in this session"),
		),
		mcp.WithNumber("total_answers",
			mcp.Required(),
			mcp.Description("Total number of answers in this session"),
		),
	)

	searchVocabularyTool := mcp.NewTool("search_vocabulary",
		mcp.WithDescription(
			"Search vocabulary by word, translation or definition. "+
				"Matching is case-insensitive substring search.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
	)

	extractVocabularyTool := mcp.NewTool("extract_vocabulary_from_text",
		mcp.WithDescription(
			"Identify potentially challenging Swedish words in a text: long "+
				"words, words with å/ä/ö, and words with common derivational "+
				"suffixes, excluding frequent function words. Optionally add "+
				"the new ones to the vocabulary database with a placeholder "+
				"translation for later completion.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Swedish text to analyze"),
		),
		mcp.WithBoolean("add_to_database",
			mcp.Description("Add identified words not already in the database (default false)"),
		),
	)

	getWordDetailsTool := mcp.NewTool("get_word_details",
		mcp.WithDescription("Get full details and review statistics for one vocabulary word"),
		mcp.WithString("word_id",
			mcp.Required(),
			mcp.Description("Notion page ID of the word"),
		),
	)

	markWordsForReviewTool := mcp.NewTool("mark_words_for_review",
		mcp.WithDescription(
			"Force words back into the review queue by clearing their last "+
				"reviewed date. Individual failures are reported without "+
				"aborting the rest of the batch.",
		),
		mcp.WithArray("word_ids",
			mcp.Required(),
			mcp.Description("Notion page IDs of the words to reset"),
		),
	)

	addGrammarConceptTool := mcp.NewTool("add_grammar_concept",
		mcp.WithDescription(
			"Add a grammar concept to the database. New concepts start with "+
				"mastery status Learning.",
		),
		mcp.WithString("concept_name",
			mcp.Required(),
			mcp.Description("Name of the grammar concept"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category, for example Verb Conjugation or Word Order"),
		),
		mcp.WithString("difficulty_level",
			mcp.Required(),
			mcp.Description("Difficulty: Beginner, Intermediate or Advanced"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Explanation of the rule"),
		),
		mcp.WithString("examples",
			mcp.Required(),
			mcp.Description("Example sentences demonstrating the concept"),
		),
		mcp.WithString("practice_notes",
			mcp.Description("Personal notes on practicing this concept"),
		),
	)

	getGrammarConceptsTool := mcp.NewTool("get_grammar_concepts",
		mcp.WithDescription(
			"List grammar concepts grouped by category, optionally filtered. "+
				"Multiple filters combine with AND.",
		),
		mcp.WithString("category",
			mcp.Description("Filter by category"),
		),
		mcp.WithString("difficulty",
			mcp.Description("Filter by difficulty level"),
		),
		mcp.WithString("mastery_status",
			mcp.Description("Filter by mastery status: Learning, Practicing or Mastered"),
		),
	)

	updateGrammarMasteryTool := mcp.NewTool("update_grammar_mastery",
		mcp.WithDescription("Update the mastery status of a grammar concept and optionally replace its practice notes"),
		mcp.WithString("concept_id",
			mcp.Required(),
			mcp.Description("Notion page ID of the concept"),
		),
		mcp.WithString("mastery_status",
			mcp.Required(),
			mcp.Description("New mastery status: Learning, Practicing or Mastered"),
		),
		mcp.WithString("practice_notes",
			mcp.Description("Replacement practice notes"),
		),
	)

	searchGrammarTool := mcp.NewTool("search_grammar",
		mcp.WithDescription(
			"Search grammar concepts by name, category, description or "+
				"examples. Matching is case-insensitive substring search.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
	)

	getStudySessionTool := mcp.NewTool("get_study_session_data",
		mcp.WithDescription(
			"Prepare a study session: due vocabulary from the review queue "+
				"plus grammar concepts still marked Learning.",
		),
		mcp.WithNumber("vocab_count",
			mcp.Description("Maximum vocabulary words to include (default 10)"),
		),
		mcp.WithNumber("grammar_count",
			mcp.Description("Maximum grammar concepts to include (default 5)"),
		),
	)

	updateStudyProgressTool := mcp.NewTool("update_study_progress",
		mcp.WithDescription(
			"Record the results of a completed study session in one call. "+
				"Each result names its type (vocabulary or grammar) and ID; "+
				"vocabulary results carry correct/total counts, grammar "+
				"results a new mastery status and optional notes.",
		),
		mcp.WithArray("results",
			mcp.Required(),
			mcp.Description(
				"Session results. Each entry is an object with: type "+
					"('vocabulary' or 'grammar'), id (Notion page ID), and "+
					"for vocabulary correct and total counts, for grammar "+
					"new_mastery and notes.",
			),
		),
	)

	// Register all tools with their handlers
	s.AddTool(addVocabularyWordTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Pass the context with service to the handler
		return handleAddVocabularyWord(ctx, request)
	})
	s.AddTool(getVocabularyForReviewTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetVocabularyForReview(ctx, request)
	})
	s.AddTool(updateWordMasteryTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateWordMastery(ctx, request)
	})
	s.AddTool(searchVocabularyTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearchVocabulary(ctx, request)
	})
	s.AddTool(extractVocabularyTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleExtractVocabulary(ctx, request)
	})
	s.AddTool(getWordDetailsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetWordDetails(ctx, request)
	})
	s.AddTool(markWordsForReviewTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleMarkWordsForReview(ctx, request)
	})
	s.AddTool(addGrammarConceptTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddGrammarConcept(ctx, request)
	})
	s.AddTool(getGrammarConceptsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetGrammarConcepts(ctx, request)
	})
	s.AddTool(updateGrammarMasteryTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateGrammarMastery(ctx, request)
	})
	s.AddTool(searchGrammarTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearchGrammar(ctx, request)
	})
	s.AddTool(getStudySessionTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetStudySession(ctx, request)
	})
	s.AddTool(updateStudyProgressTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateStudyProgress(ctx, request)
	})

	// Start the server
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Error serving MCP server: %v", err)
	}
}
