package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// NewTitle builds a title property payload.
func NewTitle(s string) notionapi.Property {
	return &notionapi.TitleProperty{
		Type: notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}

// NewText builds a rich text property payload.
func NewText(s string) notionapi.Property {
	return &notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}

// NewSelect builds a select property payload.
func NewSelect(name string) notionapi.Property {
	return &notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: name},
	}
}

// NewNumber builds a number property payload.
func NewNumber(v float64) notionapi.Property {
	return &notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: v,
	}
}

// NewDate builds a date property payload. A nil time clears the stored
// date: the payload carries an explicit null, which Notion treats as a
// removal rather than a no-op.
func NewDate(t *time.Time) notionapi.Property {
	p := &notionapi.DateProperty{Type: notionapi.PropertyTypeDate}
	if t != nil {
		d := notionapi.Date(*t)
		p.Date = &notionapi.DateObject{Start: &d}
	}
	return p
}
