// Package notion isolates the rest of the program from the Notion API's
// nested property encoding. Accessors decode exactly one property shape
// each and degrade to a neutral default when the field is missing or has a
// different shape; builders produce the matching request payloads.
package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// richTextValue concatenates the plain text of a rich text array. Pages
// returned by the API carry PlainText; payloads built locally only carry
// Text.Content.
func richTextValue(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
			continue
		}
		if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}

// Title returns the plain text of a title property, or "".
func Title(page *notionapi.Page, name string) string {
	if p, ok := page.Properties[name].(*notionapi.TitleProperty); ok {
		return richTextValue(p.Title)
	}
	return ""
}

// Text returns the plain text of a rich text property, or "".
func Text(page *notionapi.Page, name string) string {
	if p, ok := page.Properties[name].(*notionapi.RichTextProperty); ok {
		return richTextValue(p.RichText)
	}
	return ""
}

// SelectName returns the selected option name, or "" when nothing is
// selected or the field is not a select.
func SelectName(page *notionapi.Page, name string) string {
	if p, ok := page.Properties[name].(*notionapi.SelectProperty); ok {
		return p.Select.Name
	}
	return ""
}

// Number returns a number property value, or 0.
func Number(page *notionapi.Page, name string) float64 {
	if p, ok := page.Properties[name].(*notionapi.NumberProperty); ok {
		return p.Number
	}
	return 0
}

// Date returns the start of a date property, or nil when the field is
// missing, cleared, or not a date.
func Date(page *notionapi.Page, name string) *time.Time {
	p, ok := page.Properties[name].(*notionapi.DateProperty)
	if !ok || p.Date == nil || p.Date.Start == nil {
		return nil
	}
	t := time.Time(*p.Date.Start)
	return &t
}
