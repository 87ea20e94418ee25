package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

func TestDecodeMapping(t *testing.T) {
	records, err := Decode([]byte(`
records:
  - id: tv
    title: Television
    kind: product
    tags: [electronics, sale]
    path: /shop/av/
    fields:
      price: 499
    created: 2024-03-01 10:00:00
  - title: Untitled
`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	tv := records[0]
	assert.Equal(t, "tv", tv.ID)
	assert.Equal(t, models.Kind("product"), tv.Kind)
	assert.Equal(t, []string{"electronics", "sale"}, tv.Tags)
	assert.Equal(t, "shop/av", tv.Path)
	assert.Equal(t, 499.0, tv.Fields["price"])
	assert.Equal(t, 2024, tv.CreatedAt.Year())

	_, err = uuid.Parse(records[1].ID)
	assert.NoError(t, err, "missing ids are generated")
}

func TestDecodeList(t *testing.T) {
	records, err := Decode([]byte("- id: a\n- id: b\n  title: Bee\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Title, "title falls back to the id")
	assert.Equal(t, "Bee", records[1].Title)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("records: []"))
	assert.True(t, errors.Is(err, ErrNoItems))

	_, err = Decode([]byte("records: [unclosed"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.yaml")
	in := []models.Record{{
		ID:        "x",
		Title:     "X",
		Tags:      []string{"a"},
		Fields:    map[string]float64{"n": 2},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[0].Tags, out[0].Tags)
	assert.Equal(t, in[0].Fields, out[0].Fields)
	assert.True(t, in[0].CreatedAt.Equal(out[0].CreatedAt))
}

func TestParseNote(t *testing.T) {
	r, err := ParseNote("work/plan.md", []byte(`---
id: n1
title: The Plan
type: issue
tags: [q3, roadmap]
created: 2024-02-03 04:05:06
---

# The Plan
`))
	require.NoError(t, err)
	assert.Equal(t, "n1", r.ID)
	assert.Equal(t, "The Plan", r.Title)
	assert.Equal(t, models.Kind("issue"), r.Kind)
	assert.Equal(t, []string{"q3", "roadmap"}, r.Tags)
	assert.Equal(t, "work/plan.md", r.Path)
	assert.Equal(t, "work", r.Dir())
	assert.Equal(t, time.February, r.CreatedAt.Month())

	plain, err := ParseNote("scratch.md", []byte("just text"))
	require.NoError(t, err)
	assert.Equal(t, "scratch", plain.Title)
	assert.NotEmpty(t, plain.ID)

	_, err = ParseNote("bad.md", []byte("---\ntitle: [oops\n---\n"))
	assert.Error(t, err)
}

func TestLoadNotes(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("a.md", "---\ntitle: A\n---\n")
	write("sub/b.md", "body only")
	write("sub/ignore.txt", "not a note")
	write(".hidden/c.md", "---\ntitle: C\n---\n")

	records, err := LoadNotes(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)

	paths := []string{records[0].Path, records[1].Path}
	assert.ElementsMatch(t, []string{"a.md", "sub/b.md"}, paths)
	for _, r := range records {
		assert.False(t, r.CreatedAt.IsZero(), "falls back to the file time")
	}

	_, err = LoadNotes(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoItems))
}
