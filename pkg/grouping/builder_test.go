package grouping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/tree"
)

func testRecords() []models.Record {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC) }
	return []models.Record{
		{ID: "1", Title: "Zebra", Kind: "note", Tags: []string{"Work", "urgent"}, Path: "work/projects/zebra.md", CreatedAt: day(1)},
		{ID: "2", Title: "apple", Kind: "task", Tags: []string{"work"}, Path: "work/apple.md", CreatedAt: day(2)},
		{ID: "3", Title: "Mango", Kind: "note", Path: "home/mango.md", CreatedAt: day(3)},
		{ID: "4", Title: "loose", Path: "loose.md"},
	}
}

func childIDs(n *Node) []string {
	var ids []string
	for _, c := range n.Children() {
		ids = append(ids, c.ID())
	}
	return ids
}

func newRoot() *Node {
	return tree.NewRoot[string, models.Record](models.Key)
}

func TestBuildByKind(t *testing.T) {
	root := newRoot()
	Builder{Rules: []Rule{ByKind()}}.Build(root, testRecords())

	assert.Equal(t, []string{"note", "task", NoValue}, childIDs(root))
	note := root.Child("note")
	assert.Equal(t, []string{"3", "1"}, note.Keys(), "records sorted by title")
	assert.Equal(t, Option{Rule: "kind", Value: "note"}, note.Extra())
	assert.Equal(t, "kind:note", note.Extra().(Option).GroupOptionID())
	assert.Equal(t, 0, root.Len())
}

func TestBuildMultiValueGroups(t *testing.T) {
	root := newRoot()
	Builder{Rules: []Rule{ByTag()}}.Build(root, testRecords())

	assert.Equal(t, []string{"urgent", "work", NoValue}, childIDs(root))
	assert.Equal(t, []string{"2", "1"}, root.Child("work").Keys(), "tags are case-folded into one group")
	assert.True(t, root.Child("urgent").Has("1"))
	assert.Equal(t, 5, root.FlattenedLen(), "record 1 sits in two groups")
}

func TestBuildNestedRules(t *testing.T) {
	root := newRoot()
	rules, err := Lookup("kind, tag")
	require.NoError(t, err)
	Builder{Rules: rules}.Build(root, testRecords())

	note := root.Child("note")
	require.NotNil(t, note)
	assert.Equal(t, []string{"note/urgent", "note/work", "note/" + NoValue}, childIDs(note))
	assert.Equal(t, 1, note.Child("note/work").Depth())
	assert.Equal(t, Option{Rule: "tag", Value: "work"}, note.Child("note/work").Extra())
}

func TestGroupIDsEscapeSlashes(t *testing.T) {
	root := newRoot()
	rules, err := Lookup("tag, kind")
	require.NoError(t, err)
	Builder{Rules: rules}.Build(root, []models.Record{
		{ID: "1", Title: "one", Kind: "note", Tags: []string{"a/b"}},
		{ID: "2", Title: "two", Kind: "b", Tags: []string{"a"}},
	})

	assert.ElementsMatch(t, []string{"a", "a%2Fb"}, childIDs(root))
	assert.Equal(t, Option{Rule: "tag", Value: "a/b"}, root.Child("a%2Fb").Extra())
	assert.Equal(t, []string{"a%2Fb/note"}, childIDs(root.Child("a%2Fb")))

	nested := root.FindNode("a/b")
	require.NotNil(t, nested)
	assert.Equal(t, Option{Rule: "kind", Value: "b"}, nested.Extra())
	assert.Same(t, root.Child("a"), nested.Parent())
}

func TestBuildNaturalTree(t *testing.T) {
	root := newRoot()
	Builder{Natural: true, Rules: []Rule{ByKind()}}.Build(root, testRecords())

	assert.Equal(t, []string{"home", "work"}, childIDs(root))
	work := root.Child("work")
	assert.Equal(t, []string{"work/projects"}, childIDs(work))
	assert.Equal(t, []string{"2"}, work.Keys())
	assert.Nil(t, work.Extra(), "natural nodes carry no option")
	assert.Equal(t, []string{"4"}, root.Keys(), "records without a directory stay on the root")
}

func TestBuildReplacesPreviousTree(t *testing.T) {
	root := newRoot()
	b := Builder{Rules: []Rule{ByKind()}}
	b.Build(root, testRecords())
	b.Build(root, testRecords()[:1])

	assert.Equal(t, []string{"note"}, childIDs(root))
	assert.Equal(t, 1, root.FlattenedLen())
}

func TestBuildCustomCompare(t *testing.T) {
	root := newRoot()
	Builder{Rules: []Rule{ByKind()}, Compare: NewestFirst()}.Build(root, testRecords())
	assert.Equal(t, []string{"3", "1"}, root.Child("note").Keys())
}

func TestByMonthAndDir(t *testing.T) {
	r := testRecords()[0]
	assert.Equal(t, []string{"2024-03"}, ByMonth().Values(r))
	assert.Equal(t, []string{"work"}, ByDir().Values(r))
	assert.Nil(t, ByMonth().Values(testRecords()[3]))
	assert.Nil(t, ByDir().Values(testRecords()[3]))
}

func TestLookup(t *testing.T) {
	rules, err := Lookup("")
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = Lookup("kind,colour")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
	assert.Equal(t, []string{"dir", "kind", "month", "tag"}, Names())
}

func TestValueOrder(t *testing.T) {
	less := ValueOrder()
	assert.True(t, less("apple", "Banana"))
	assert.True(t, less("item2", "item10"), "numeric collation")
	assert.True(t, less("zzz", NoValue))
	assert.False(t, less(NoValue, "aaa"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "In Progress", Label("in-progress"))
	assert.Equal(t, "Work", Label("WORK"))
	assert.Equal(t, NoValue, Label(NoValue))
}
