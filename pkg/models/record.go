package models

import (
	"strings"
	"time"
)

// Kind is the free-form category of a record (note, task, product, ...).
type Kind string

// Record is the item type the CLI and TUI project into slots.
type Record struct {
	ID        string             `json:"id" yaml:"id"`
	Title     string             `json:"title" yaml:"title"`
	Kind      Kind               `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path      string             `json:"path,omitempty" yaml:"path,omitempty"` // slash separated, drives natural trees
	Tags      []string           `json:"tags,omitempty" yaml:"tags,flow,omitempty"`
	Fields    map[string]float64 `json:"fields,omitempty" yaml:"fields,omitempty"`
	CreatedAt time.Time          `json:"created_at" yaml:"created"`
}

// Key is the record's identity inside a tree.
func Key(r Record) string { return r.ID }

// Field returns a numeric field; missing fields are reported as absent.
func (r Record) Field(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// HasTag reports whether the record carries tag, ignoring case.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Dir is the directory part of Path ("" for records at the top level).
func (r Record) Dir() string {
	p := strings.Trim(r.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}
