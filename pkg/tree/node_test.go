package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	key  string
	name string
}

func entryKey(e entry) string { return e.key }

func newTestRoot() *Node[string, entry] {
	return NewRoot[string, entry](entryKey)
}

func TestNodeItems(t *testing.T) {
	root := newTestRoot()
	root.Add(entry{"a", "alpha"}, false)
	root.Add(entry{"b", "beta"}, false)
	root.Add(entry{"a", "alpha 2"}, false)

	assert.Equal(t, 2, root.Len())
	assert.Equal(t, []string{"a", "b"}, root.Keys())
	got, ok := root.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha 2", got.name, "re-adding a key replaces in place")

	assert.True(t, root.Remove("a", false))
	assert.False(t, root.Remove("a", false))
	assert.Equal(t, []string{"b"}, root.Keys())
	assert.True(t, root.Has("b"))

	root.Clear(false)
	assert.Equal(t, 0, root.Len())
	assert.False(t, root.Has("b"))
}

func TestNodeDepthAndRoot(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	b := a.NewChild("a/b")

	assert.Equal(t, -1, root.Depth())
	assert.Equal(t, 0, a.Depth())
	assert.Equal(t, 1, b.Depth())
	assert.Same(t, root, b.Root())
	assert.False(t, root.HasParent())
	assert.True(t, b.HasParent())
}

func TestNodeAddChildReplacesSameID(t *testing.T) {
	root := newTestRoot()
	first := root.NewChild("x")
	second := NewNode[string, entry]("x", nil)
	root.AddChild(second, false)

	require.Len(t, root.Children(), 1)
	assert.Same(t, second, root.Child("x"))
	assert.Nil(t, first.Parent())
	assert.Equal(t, "a", second.KeyOf(entry{key: "a"}), "inherits the parent's key function")
}

func TestNodeAddChildReparents(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	b := root.NewChild("b")
	c := a.NewChild("c")

	b.AddChild(c, false)
	assert.Nil(t, a.Child("c"))
	assert.Same(t, b, c.Parent())
}

func TestNodeRemoveChildKeepsOrder(t *testing.T) {
	root := newTestRoot()
	for _, id := range []string{"a", "b", "c"} {
		root.NewChild(id)
	}
	assert.True(t, root.RemoveChild("b", false))
	assert.False(t, root.RemoveChild("b", false))

	var ids []string
	for _, c := range root.Children() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"a", "c"}, ids)
	assert.NotNil(t, root.Child("c"))
}

func TestNodeCollapse(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	a.NewChild("a/b")

	assert.True(t, a.Collapse(Collapse, false))
	assert.False(t, a.Collapse(Collapse, false), "second collapse is a no-op")
	assert.False(t, a.Child("a/b").IsCollapsed(), "descendants keep their own flag")
	assert.True(t, a.Collapse(Toggle, false))
	assert.False(t, a.IsCollapsed())
}

func TestNodeCollapseToLevel(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	b := a.NewChild("a/b")
	c := b.NewChild("a/b/c")

	require.True(t, root.CollapseToLevel(1))
	assert.False(t, a.IsCollapsed())
	assert.True(t, b.IsCollapsed())
	assert.True(t, c.IsCollapsed())
	assert.False(t, root.CollapseToLevel(1), "unchanged state reports false")

	assert.True(t, root.ExpandAll())
	assert.False(t, b.IsCollapsed())
	assert.True(t, root.CollapseAll())
	assert.True(t, a.IsCollapsed())
	assert.False(t, root.IsCollapsed())
}

func TestNodeFind(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	b := a.NewChild("b")
	root.Add(entry{"k", "top"}, false)
	b.Add(entry{"k", "deep"}, false)

	assert.Same(t, b, root.FindNode("b"))
	assert.Nil(t, root.FindNode(""), "the root is never returned")
	assert.Nil(t, root.FindNode("missing"))

	holder := root.FindNodeByKey("k")
	assert.Same(t, b, holder, "children are searched before own items")
	item, ok := root.FindItem("k")
	require.True(t, ok)
	assert.Equal(t, "deep", item.name)
	assert.Same(t, b, root.FindNodeByItem(entry{key: "k"}))
}

func TestNodeTraversal(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")
	b := root.NewChild("b")
	a1 := a.NewChild("a1")
	root.Add(entry{"r", "root item"}, false)
	a.Add(entry{"x", "in a"}, false)
	a1.Add(entry{"y", "in a1"}, false)
	b.Add(entry{"z", "in b"}, false)

	var ids []string
	for n := range root.Descendants() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []string{"a", "b", "a1"}, ids, "breadth-first")

	var keys []string
	for item := range root.FlattenedItems() {
		keys = append(keys, item.key)
	}
	assert.Equal(t, []string{"y", "x", "z", "r"}, keys, "children before items")
	assert.Equal(t, 4, root.FlattenedLen())
	assert.Equal(t, 2, a.FlattenedLen())
	assert.Len(t, root.CollectItems(), 4)
}

func TestNodeNotifyBubbles(t *testing.T) {
	root := newTestRoot()
	a := root.NewChild("a")

	var rootCalls, childCalls int
	unsub := root.Subscribe(func() { rootCalls++ })
	a.Subscribe(func() { childCalls++ })

	a.Add(entry{"k", "v"}, true)
	assert.Equal(t, 1, rootCalls)
	assert.Equal(t, 1, childCalls)

	a.Add(entry{"k2", "v"}, false)
	assert.Equal(t, 1, rootCalls, "silent mutations do not notify")

	a.AddAll([]entry{{"1", ""}, {"2", ""}, {"3", ""}}, true)
	assert.Equal(t, 2, rootCalls, "bulk add notifies once")

	assert.False(t, a.Remove("missing", true))
	assert.Equal(t, 2, rootCalls, "no-op remove does not notify")

	unsub()
	unsub()
	a.Collapse(Collapse, true)
	assert.Equal(t, 2, rootCalls)
	assert.Equal(t, 3, childCalls)
}

func TestNotifierUnsubscribeDuringFire(t *testing.T) {
	var n Notifier
	var order []int
	var second func()
	n.Subscribe(func() {
		order = append(order, 1)
		second()
	})
	second = n.Subscribe(func() { order = append(order, 2) })
	n.Subscribe(func() { order = append(order, 3) })

	n.Fire()
	assert.Equal(t, []int{1, 3}, order)
	assert.Equal(t, 2, n.Len())

	n.Reset()
	n.Fire()
	assert.True(t, slices.Equal([]int{1, 3}, order))
}
