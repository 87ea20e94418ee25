package tree

import (
	"iter"
)

// CollapseState is the requested change passed to Node.Collapse.
type CollapseState int

const (
	Collapse CollapseState = iota
	Expand
	Toggle
)

// KeyFunc derives the unique key of an item.
type KeyFunc[K comparable, T any] func(item T) K

// Node is a single container in the hierarchy. It holds an ordered list of
// items (indexed by key) and an ordered list of child nodes. The root node is
// the one without a parent; it never renders a header of its own.
type Node[K comparable, T any] struct {
	id      string
	keyOf   KeyFunc[K, T]
	parent  *Node[K, T] // not owned
	extra   any
	version uint64

	children   []*Node[K, T]
	childIndex map[string]int

	items     []T
	keys      []K
	itemIndex map[K]int

	collapsed bool
	listeners Notifier
}

// NewRoot creates an empty root node.
func NewRoot[K comparable, T any](keyOf KeyFunc[K, T]) *Node[K, T] {
	return NewNode[K, T]("", keyOf)
}

// NewNode creates a detached node. It becomes part of a tree once passed to
// AddChild.
func NewNode[K comparable, T any](id string, keyOf KeyFunc[K, T]) *Node[K, T] {
	return &Node[K, T]{
		id:         id,
		keyOf:      keyOf,
		childIndex: make(map[string]int),
		itemIndex:  make(map[K]int),
	}
}

// NewChild creates a node with the same key function as n and appends it.
// An existing child with the same id is replaced.
func (n *Node[K, T]) NewChild(id string) *Node[K, T] {
	c := NewNode[K, T](id, n.keyOf)
	n.AddChild(c, false)
	return c
}

func (n *Node[K, T]) ID() string          { return n.id }
func (n *Node[K, T]) Parent() *Node[K, T] { return n.parent }
func (n *Node[K, T]) HasParent() bool     { return n.parent != nil }
func (n *Node[K, T]) IsCollapsed() bool   { return n.collapsed }
func (n *Node[K, T]) Extra() any          { return n.extra }
func (n *Node[K, T]) SetExtra(extra any)  { n.extra = extra }
func (n *Node[K, T]) KeyOf(item T) K      { return n.keyOf(item) }

// Version is bumped by every item or child mutation of this node.
func (n *Node[K, T]) Version() uint64 { return n.version }

// Depth is -1 for the root, 0 for its direct children and parent+1 below.
func (n *Node[K, T]) Depth() int {
	d := -1
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root walks up the parent chain.
func (n *Node[K, T]) Root() *Node[K, T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Len is the number of items held directly by n.
func (n *Node[K, T]) Len() int { return len(n.items) }

// FlattenedLen counts the items of n and of all its descendants.
func (n *Node[K, T]) FlattenedLen() int {
	total := len(n.items)
	for _, c := range n.children {
		total += c.FlattenedLen()
	}
	return total
}

// Items returns the direct items in insertion order. The slice is shared and
// must not be modified.
func (n *Node[K, T]) Items() []T { return n.items }

// Keys returns the keys of the direct items, parallel to Items.
func (n *Node[K, T]) Keys() []K { return n.keys }

// Children returns the child nodes in stored order. The slice is shared.
func (n *Node[K, T]) Children() []*Node[K, T] { return n.children }

// Child returns the direct child with the given id.
func (n *Node[K, T]) Child(id string) *Node[K, T] {
	if i, ok := n.childIndex[id]; ok {
		return n.children[i]
	}
	return nil
}

// Get returns the direct item stored under key.
func (n *Node[K, T]) Get(key K) (T, bool) {
	if i, ok := n.itemIndex[key]; ok {
		return n.items[i], true
	}
	var zero T
	return zero, false
}

// Has reports whether key is a direct item of n.
func (n *Node[K, T]) Has(key K) bool {
	_, ok := n.itemIndex[key]
	return ok
}

// Add inserts item under its key. Re-adding an existing key replaces the
// stored value without moving it.
func (n *Node[K, T]) Add(item T, notify bool) {
	n.put(item)
	n.version++
	if notify {
		n.Notify()
	}
}

// AddAll inserts every item and notifies at most once.
func (n *Node[K, T]) AddAll(items []T, notify bool) {
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		n.put(item)
	}
	n.version++
	if notify {
		n.Notify()
	}
}

func (n *Node[K, T]) put(item T) {
	key := n.keyOf(item)
	if i, ok := n.itemIndex[key]; ok {
		n.items[i] = item
		return
	}
	n.itemIndex[key] = len(n.items)
	n.items = append(n.items, item)
	n.keys = append(n.keys, key)
}

// Remove deletes the item stored under key. It reports whether anything was
// removed; a missing key is a no-op and does not notify.
func (n *Node[K, T]) Remove(key K, notify bool) bool {
	i, ok := n.itemIndex[key]
	if !ok {
		return false
	}
	n.items = append(n.items[:i], n.items[i+1:]...)
	n.keys = append(n.keys[:i], n.keys[i+1:]...)
	delete(n.itemIndex, key)
	for j := i; j < len(n.keys); j++ {
		n.itemIndex[n.keys[j]] = j
	}
	n.version++
	if notify {
		n.Notify()
	}
	return true
}

// Clear removes all direct items.
func (n *Node[K, T]) Clear(notify bool) {
	if len(n.items) == 0 {
		return
	}
	n.items = nil
	n.keys = nil
	n.itemIndex = make(map[K]int)
	n.version++
	if notify {
		n.Notify()
	}
}

// AddChild appends c and makes n its parent. A child with the same id is
// replaced in place and detached.
func (n *Node[K, T]) AddChild(c *Node[K, T], notify bool) {
	if c.parent != nil && c.parent != n {
		c.parent.RemoveChild(c.id, false)
	}
	c.parent = n
	if c.keyOf == nil {
		c.keyOf = n.keyOf
	}
	if i, ok := n.childIndex[c.id]; ok {
		if old := n.children[i]; old != c {
			old.parent = nil
		}
		n.children[i] = c
	} else {
		n.childIndex[c.id] = len(n.children)
		n.children = append(n.children, c)
	}
	n.version++
	if notify {
		n.Notify()
	}
}

// RemoveChild detaches the direct child with the given id.
func (n *Node[K, T]) RemoveChild(id string, notify bool) bool {
	i, ok := n.childIndex[id]
	if !ok {
		return false
	}
	n.children[i].parent = nil
	n.children = append(n.children[:i], n.children[i+1:]...)
	delete(n.childIndex, id)
	for j := i; j < len(n.children); j++ {
		n.childIndex[n.children[j].id] = j
	}
	n.version++
	if notify {
		n.Notify()
	}
	return true
}

// ClearChildren detaches every child node.
func (n *Node[K, T]) ClearChildren(notify bool) {
	if len(n.children) == 0 {
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.childIndex = make(map[string]int)
	n.version++
	if notify {
		n.Notify()
	}
}

// Collapse changes the collapse flag of n only; descendants keep their own
// flags. It reports whether the flag changed.
func (n *Node[K, T]) Collapse(state CollapseState, notify bool) bool {
	want := n.collapsed
	switch state {
	case Collapse:
		want = true
	case Expand:
		want = false
	case Toggle:
		want = !n.collapsed
	}
	if want == n.collapsed {
		return false
	}
	n.collapsed = want
	if notify {
		n.Notify()
	}
	return true
}

// CollapseToLevel expands every descendant shallower than level and
// collapses the rest. The receiver itself is left alone.
func (n *Node[K, T]) CollapseToLevel(level int) bool {
	changed := false
	for d := range n.Descendants() {
		state := Expand
		if d.Depth() >= level {
			state = Collapse
		}
		if d.Collapse(state, false) {
			changed = true
		}
	}
	return changed
}

// ExpandAll clears the collapse flag of every descendant.
func (n *Node[K, T]) ExpandAll() bool {
	return n.setAll(Expand)
}

// CollapseAll sets the collapse flag of every descendant.
func (n *Node[K, T]) CollapseAll() bool {
	return n.setAll(Collapse)
}

func (n *Node[K, T]) setAll(state CollapseState) bool {
	changed := false
	for d := range n.Descendants() {
		if d.Collapse(state, false) {
			changed = true
		}
	}
	return changed
}

// FindNode searches the subtree (n included) depth-first for id.
func (n *Node[K, T]) FindNode(id string) *Node[K, T] {
	if n.id == id && n.parent != nil {
		return n
	}
	for _, c := range n.children {
		if found := c.FindNode(id); found != nil {
			return found
		}
	}
	return nil
}

// FindNodeByKey returns the first node, depth-first, that holds key directly.
func (n *Node[K, T]) FindNodeByKey(key K) *Node[K, T] {
	for _, c := range n.children {
		if found := c.FindNodeByKey(key); found != nil {
			return found
		}
	}
	if n.Has(key) {
		return n
	}
	return nil
}

// FindNodeByItem is FindNodeByKey on the item's key.
func (n *Node[K, T]) FindNodeByItem(item T) *Node[K, T] {
	return n.FindNodeByKey(n.keyOf(item))
}

// FindItem returns the first stored item with key, searching depth-first.
func (n *Node[K, T]) FindItem(key K) (T, bool) {
	if holder := n.FindNodeByKey(key); holder != nil {
		return holder.Get(key)
	}
	var zero T
	return zero, false
}

// Descendants yields every node below n, breadth-first.
func (n *Node[K, T]) Descendants() iter.Seq[*Node[K, T]] {
	return func(yield func(*Node[K, T]) bool) {
		queue := append([]*Node[K, T](nil), n.children...)
		for len(queue) > 0 {
			head := queue[0]
			queue = queue[1:]
			if !yield(head) {
				return
			}
			queue = append(queue, head.children...)
		}
	}
}

// FlattenedItems yields every item of the subtree depth-first. Child nodes
// are visited before the node's own items (folders before files).
func (n *Node[K, T]) FlattenedItems() iter.Seq[T] {
	return func(yield func(T) bool) {
		n.walkItems(yield)
	}
}

func (n *Node[K, T]) walkItems(yield func(T) bool) bool {
	for _, c := range n.children {
		if !c.walkItems(yield) {
			return false
		}
	}
	for _, item := range n.items {
		if !yield(item) {
			return false
		}
	}
	return true
}

// CollectItems materializes FlattenedItems.
func (n *Node[K, T]) CollectItems() []T {
	out := make([]T, 0, n.FlattenedLen())
	for item := range n.FlattenedItems() {
		out = append(out, item)
	}
	return out
}
