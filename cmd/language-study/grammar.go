package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/mhellberg/language-study-mcp/internal/notion"
	"github.com/mhellberg/language-study-mcp/internal/scheduler"
)

// AddGrammarParams carries the add_grammar_concept tool inputs.
type AddGrammarParams struct {
	Name            string
	Category        string
	DifficultyLevel string
	Description     string
	Examples        string
	PracticeNotes   string
}

// AddGrammarConcept creates a grammar page starting at "Learning" and
// returns its Notion page identifier.
func (s *StudyService) AddGrammarConcept(ctx context.Context, p AddGrammarParams) (string, error) {
	s.Logger.Debug("AddGrammarConcept called", zap.String("name", p.Name), zap.String("category", p.Category))

	now := timeNow()
	props := notionapi.Properties{
		propConceptName:     notion.NewTitle(p.Name),
		propCategory:        notion.NewSelect(p.Category),
		propDifficultyLevel: notion.NewSelect(p.DifficultyLevel),
		propDescription:     notion.NewText(p.Description),
		propExamples:        notion.NewText(p.Examples),
		propDateAdded:       notion.NewDate(&now),
		propMasteryStatus:   notion.NewSelect(string(scheduler.LevelLearning)),
	}
	if p.PracticeNotes != "" {
		props[propPracticeNotes] = notion.NewText(p.PracticeNotes)
	}

	page, err := s.Client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: s.GrammarDB},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("creating grammar page: %w", err)
	}
	return string(page.ID), nil
}

// GrammarFilter holds optional equality filters for the grammar query.
// Empty fields are skipped; multiple clauses combine with AND.
type GrammarFilter struct {
	Category      string
	Difficulty    string
	MasteryStatus string
}

// filter builds the Notion query filter, or nil when no clause is set.
func (f GrammarFilter) filter() notionapi.Filter {
	var clauses []notionapi.Filter
	add := func(property, value string) {
		if value != "" {
			clauses = append(clauses, notionapi.PropertyFilter{
				Property: property,
				Select:   &notionapi.SelectFilterCondition{Equals: value},
			})
		}
	}
	add(propCategory, f.Category)
	add(propDifficultyLevel, f.Difficulty)
	add(propMasteryStatus, f.MasteryStatus)

	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return notionapi.AndCompoundFilter(clauses)
	}
}

// GrammarConcepts queries the grammar database with the given filter.
func (s *StudyService) GrammarConcepts(ctx context.Context, f GrammarFilter) ([]GrammarConcept, error) {
	pages, err := notion.QueryAll(ctx, s.Client, s.GrammarDB, f.filter())
	if err != nil {
		return nil, fmt.Errorf("querying grammar database: %w", err)
	}

	concepts := make([]GrammarConcept, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		concepts = append(concepts, GrammarConcept{
			ID:              string(page.ID),
			Name:            notion.Title(page, propConceptName),
			Category:        notion.SelectName(page, propCategory),
			DifficultyLevel: notion.SelectName(page, propDifficultyLevel),
			MasteryStatus:   notion.SelectName(page, propMasteryStatus),
		})
	}
	return concepts, nil
}

// UpdateGrammarMastery sets the mastery status of a concept and optionally
// replaces its practice notes.
func (s *StudyService) UpdateGrammarMastery(ctx context.Context, conceptID, masteryStatus, practiceNotes string) (GrammarUpdate, error) {
	page, err := s.Client.Page.Get(ctx, notionapi.PageID(conceptID))
	if err != nil {
		return GrammarUpdate{}, fmt.Errorf("retrieving concept %s: %w", conceptID, err)
	}
	name := notion.Title(page, propConceptName)

	props := notionapi.Properties{
		propMasteryStatus: notion.NewSelect(masteryStatus),
	}
	notesUpdated := false
	if practiceNotes != "" {
		props[propPracticeNotes] = notion.NewText(practiceNotes)
		notesUpdated = true
	}

	if _, err := s.Client.Page.Update(ctx, notionapi.PageID(conceptID), &notionapi.PageUpdateRequest{Properties: props}); err != nil {
		return GrammarUpdate{}, fmt.Errorf("updating concept %s: %w", conceptID, err)
	}

	return GrammarUpdate{Name: name, MasteryStatus: masteryStatus, NotesUpdated: notesUpdated}, nil
}

// SearchGrammar fetches the whole grammar database and matches the query
// case-insensitively against name, category, description and examples.
func (s *StudyService) SearchGrammar(ctx context.Context, query string) ([]GrammarConcept, error) {
	pages, err := notion.QueryAll(ctx, s.Client, s.GrammarDB, nil)
	if err != nil {
		return nil, fmt.Errorf("querying grammar database: %w", err)
	}

	q := strings.ToLower(query)
	var matches []GrammarConcept
	for i := range pages {
		page := &pages[i]
		name := notion.Title(page, propConceptName)
		category := notion.SelectName(page, propCategory)
		description := notion.Text(page, propDescription)
		examples := notion.Text(page, propExamples)
		if !containsFold(q, name, category, description, examples) {
			continue
		}
		matches = append(matches, GrammarConcept{
			ID:              string(page.ID),
			Name:            name,
			Category:        category,
			DifficultyLevel: notion.SelectName(page, propDifficultyLevel),
			Description:     description,
			Examples:        examples,
			MasteryStatus:   notion.SelectName(page, propMasteryStatus),
		})
	}
	return matches, nil
}
