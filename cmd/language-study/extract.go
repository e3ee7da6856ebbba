package main

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mhellberg/language-study-mcp/internal/notion"
)

// wordPattern matches runs of Latin letters including the Swedish vowels.
var wordPattern = regexp.MustCompile(`[a-zA-ZåäöÅÄÖ]+`)

// challengingSuffixes are common Swedish derivational endings that tend to
// mark vocabulary worth studying.
var challengingSuffixes = []string{"tion", "ning", "het", "dom", "skap", "else"}

// stopWords are high-frequency Swedish function words excluded from
// extraction.
var stopWords = map[string]bool{
	"att": true, "och": true, "det": true, "är": true, "som": true,
	"för": true, "på": true, "med": true, "av": true, "till": true,
	"från": true, "har": true, "den": true, "de": true, "om": true,
	"var": true, "eller": true, "när": true, "efter": true, "över": true,
	"andra": true, "mycket": true, "bara": true, "skulle": true,
	"första": true, "utan": true, "mellan": true, "under": true,
	"ser": true, "honom": true, "kommer": true, "man": true, "också": true,
	"nu": true, "kan": true, "göra": true, "får": true, "ska": true,
	"här": true, "något": true, "alla": true, "igen": true, "mer": true,
	"varje": true, "sedan": true, "våra": true, "vara": true, "samt": true,
	"vid": true, "sådan": true, "dock": true, "men": true, "så": true,
	"både": true, "denna": true, "dessa": true, "vilka": true, "vilket": true,
}

// ExtractChallengingWords tokenizes Swedish text and returns the
// deduplicated words likely to need study: long words, words containing
// Swedish diacritics, and words carrying common derivational suffixes,
// minus stop words. The result is sorted for stable output.
func ExtractChallengingWords(text string) []string {
	seen := map[string]bool{}
	var words []string
	for _, token := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if seen[token] || stopWords[token] || !isChallenging(token) {
			continue
		}
		seen[token] = true
		words = append(words, token)
	}
	sort.Strings(words)
	return words
}

func isChallenging(word string) bool {
	if len([]rune(word)) > 6 {
		return true
	}
	if strings.ContainsAny(word, "åäö") {
		return true
	}
	for _, suffix := range challengingSuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

// ExtractVocabulary mines free text for challenging words. When
// addToDatabase is set, words not yet in the vocabulary database are
// inserted with a placeholder translation and the source text attached.
func (s *StudyService) ExtractVocabulary(ctx context.Context, text string, addToDatabase bool) (ExtractResult, error) {
	result := ExtractResult{Identified: ExtractChallengingWords(text)}
	if !addToDatabase || len(result.Identified) == 0 {
		return result, nil
	}

	pages, err := notion.QueryAll(ctx, s.Client, s.VocabDB, nil)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("querying vocabulary database: %w", err)
	}
	existing := make(map[string]bool, len(pages))
	for i := range pages {
		existing[strings.ToLower(notion.Title(&pages[i], propWord))] = true
	}

	source := text
	if runes := []rune(source); len(runes) > 100 {
		source = string(runes[:100]) + "..."
	}

	for _, word := range result.Identified {
		if existing[word] {
			result.AlreadyKnown = append(result.AlreadyKnown, word)
			continue
		}
		if _, err := s.AddWord(ctx, AddWordParams{
			Word:        word,
			Translation: "[Translation needed]",
			SourceText:  source,
		}); err != nil {
			return ExtractResult{}, fmt.Errorf("adding extracted word %q: %w", word, err)
		}
		result.Added = append(result.Added, word)
	}
	return result, nil
}
