package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-slots/pkg/filter"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

func init() {
	slots.Debug = true
}

func sample() []models.Record {
	return []models.Record{
		{ID: "tv", Title: "Television", Kind: "product", Tags: []string{"electronics", "sale"}},
		{ID: "radio", Title: "Radio", Kind: "product", Tags: []string{"electronics"}},
		{ID: "memo", Title: "Memo", Kind: "note"},
	}
}

func TestControllerDrivesManager(t *testing.T) {
	c := New(WithRules(grouping.ByTag()))
	c.SetRecords(sample())
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	// electronics: radio, tv; sale: tv; (none): memo
	assert.Equal(t, 7, m.TotalSlots())
	assert.Equal(t, 3, m.UniqueItemCount())

	h, ok := m.Header(0)
	require.True(t, ok)
	assert.Equal(t, "electronics", h.ID())
	assert.Equal(t, "tag:electronics", h.GroupOptionID)

	v := m.Version()
	c.Put(models.Record{ID: "lamp", Title: "Lamp", Tags: []string{"sale"}})
	assert.Equal(t, v+1, m.Version(), "one rebuild per mutation")
	assert.Equal(t, 8, m.TotalSlots())
	assert.Equal(t, 4, c.Len())
}

func TestControllerKeepsCollapseState(t *testing.T) {
	c := New(WithRules(grouping.ByTag()))
	c.SetRecords(sample())
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	require.True(t, m.Collapse("electronics"))
	assert.Equal(t, []string{"electronics"}, c.CollapsedIDs())

	assert.True(t, c.Delete("memo"))
	assert.False(t, c.Delete("memo"))
	assert.Equal(t, []string{"electronics"}, c.CollapsedIDs())
	assert.True(t, c.Root().Child("electronics").IsCollapsed())
	// electronics (collapsed), sale, tv
	assert.Equal(t, 3, m.TotalSlots())
	require.NoError(t, m.Verify())
}

func TestControllerRestoreCollapsed(t *testing.T) {
	c := New(WithRules(grouping.ByKind()))
	c.SetRecords(sample())
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	calls := 0
	m.Subscribe(func() { calls++ })
	c.RestoreCollapsed([]string{"product"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"product"}, c.CollapsedIDs())
	assert.Equal(t, 3, m.TotalSlots())

	c.RestoreCollapsed(nil)
	assert.Empty(t, c.CollapsedIDs())
	assert.Equal(t, 5, m.TotalSlots())
}

func TestControllerFilter(t *testing.T) {
	c := New(WithRules(grouping.ByKind()))
	c.SetRecords(sample())
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	c.SetFilter(filter.Parse("#sale"))
	assert.Equal(t, "#sale", c.Query().String())
	// note header, product header, tv
	assert.Equal(t, 3, m.TotalSlots())
	assert.Equal(t, 2, m.IndexOfKey("tv"))
	assert.Equal(t, -1, m.IndexOfKey("radio"))

	c.SetFilter(filter.Query{})
	assert.Equal(t, 5, m.TotalSlots())
}

func TestControllerSwitchGrouping(t *testing.T) {
	c := New(WithNatural())
	c.SetRecords([]models.Record{
		{ID: "a", Title: "A", Path: "docs/a.md", Kind: "note"},
		{ID: "b", Title: "B", Path: "b.md", Kind: "task"},
	})
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	h, ok := m.Header(0)
	require.True(t, ok)
	assert.Equal(t, "docs", h.ID())
	assert.False(t, h.IsGroup())
	assert.Equal(t, 3, m.TotalSlots())

	c.SetRules(grouping.ByKind())
	h, ok = m.Header(0)
	require.True(t, ok)
	assert.Equal(t, "note", h.ID())
	assert.True(t, h.IsGroup())
	assert.Equal(t, 4, m.TotalSlots())

	c.SetNatural(true)
	assert.Equal(t, 3, m.TotalSlots())

	c.SetComparator(func(x, y models.Record) int {
		switch {
		case x.Title > y.Title:
			return -1
		case x.Title < y.Title:
			return 1
		}
		return 0
	})
	assert.Equal(t, []string{"a"}, c.Root().Child("docs").Keys())
}

func TestControllerRecords(t *testing.T) {
	c := New()
	c.SetRecords(append(sample(), models.Record{ID: "tv", Title: "TV v2"}))
	assert.Equal(t, 3, c.Len(), "duplicate ids replace")
	r, ok := c.Record("tv")
	require.True(t, ok)
	assert.Equal(t, "TV v2", r.Title)
	assert.Equal(t, []string{"tv", "radio", "memo"}, ids(c.Records()))

	c.Put(models.Record{ID: "radio", Title: "Radio 2"})
	assert.Equal(t, []string{"tv", "radio", "memo"}, ids(c.Records()), "replacing keeps insertion order")
}

func TestControllerTreeMutationsNotify(t *testing.T) {
	c := New(WithRules(grouping.ByKind()))
	c.SetRecords(sample())
	m := slots.New[string, models.Record](c)
	defer m.Dispose()

	c.Root().Child("note").Add(models.Record{ID: "extra", Title: "Extra"}, true)
	assert.Equal(t, 6, m.TotalSlots())
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
