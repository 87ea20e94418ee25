package filter

import (
	"strings"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

// Query is the record predicate used by the controller. The zero value
// matches everything and reports itself as empty.
type Query struct {
	// Text is matched case-insensitively against title and path.
	Text string
	// Tags must all be present on a record.
	Tags []string
	// Kinds, when set, restricts records to these kinds.
	Kinds []models.Kind
}

// Parse reads the filter syntax used by the browser's search box:
// "#tag" adds a tag, "kind:x" adds a kind, everything else is text.
func Parse(s string) Query {
	var q Query
	var text []string
	for _, word := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(word, "#") && len(word) > 1:
			q.Tags = append(q.Tags, word[1:])
		case strings.HasPrefix(word, "kind:") && len(word) > len("kind:"):
			q.Kinds = append(q.Kinds, models.Kind(strings.TrimPrefix(word, "kind:")))
		default:
			text = append(text, word)
		}
	}
	q.Text = strings.Join(text, " ")
	return q
}

func (q Query) IsNotEmpty() bool {
	return q.Text != "" || len(q.Tags) > 0 || len(q.Kinds) > 0
}

func (q Query) Apply(r models.Record) bool {
	if len(q.Kinds) > 0 {
		ok := false
		for _, k := range q.Kinds {
			if strings.EqualFold(string(k), string(r.Kind)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, tag := range q.Tags {
		if !r.HasTag(tag) {
			return false
		}
	}
	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Path), needle) {
			return false
		}
	}
	return true
}

// String renders the query back into search box syntax.
func (q Query) String() string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	for _, t := range q.Tags {
		parts = append(parts, "#"+t)
	}
	for _, k := range q.Kinds {
		parts = append(parts, "kind:"+string(k))
	}
	return strings.Join(parts, " ")
}
