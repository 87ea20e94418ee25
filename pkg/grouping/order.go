package grouping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

// Compare orders records inside a group. It follows the cmp.Compare
// convention.
type Compare func(a, b models.Record) int

// Less orders group values and directory names.
type Less func(a, b string) bool

// ValueOrder sorts group values with a case-insensitive collation; the
// NoValue group always goes last.
func ValueOrder() Less {
	c := collate.New(language.English, collate.IgnoreCase, collate.Numeric)
	return func(a, b string) bool {
		if a == NoValue || b == NoValue {
			return b == NoValue && a != NoValue
		}
		return c.CompareString(a, b) < 0
	}
}

// TitleOrder sorts records by collated title, then by id.
func TitleOrder() Compare {
	c := collate.New(language.English, collate.IgnoreCase, collate.Numeric)
	return func(a, b models.Record) int {
		if r := c.CompareString(a.Title, b.Title); r != 0 {
			return r
		}
		return strings.Compare(a.ID, b.ID)
	}
}

// NewestFirst sorts records by creation time, newest first.
func NewestFirst() Compare {
	return func(a, b models.Record) int {
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case a.CreatedAt.Before(b.CreatedAt):
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	}
}

// Label turns a group value into a display label ("in-progress" becomes
// "In Progress").
func Label(value string) string {
	if value == NoValue {
		return value
	}
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
