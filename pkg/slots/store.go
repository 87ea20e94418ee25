package slots

import (
	"slices"

	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// location addresses one slot without materializing it: the node that owns
// the row, the item position inside that node (-1 for the node's header) and
// the nesting depth.
type location[K comparable, T any] struct {
	node  *tree.Node[K, T]
	item  int
	depth int
}

func (l location[K, T]) isHeader() bool { return l.item < 0 }

// slotStore is the storage strategy behind a Manager. Both implementations
// are fed by the same traversal and share the splice-based incremental
// update.
type slotStore[K comparable, T any] interface {
	len() int
	at(i int) Slot
	depth(i int) int
	headerNode(i int) *tree.Node[K, T]
	locate(i int) location[K, T]
	itemKey(i int) (K, bool)
	item(i int) (T, bool)
	view(start, end int) []Slot

	replace(locs []location[K, T])
	// splice removes n slots at position at, inserts locs there and
	// re-indexes the tail. It returns the number of slots that shifted.
	splice(at, n int, locs []location[K, T]) int
	setCollapsed(i int, collapsed bool)
	reset()
}

// headerFactory builds a header slot for node; it is owned by the manager
// because headers carry cached aggregates.
type headerFactory[K comparable, T any] func(node *tree.Node[K, T], depth, index int) *GroupHeaderSlot[K, T]

//---------------------
// Prebuilt
//---------------------

type prebuiltStore[K comparable, T any] struct {
	slots     []Slot
	newHeader headerFactory[K, T]
}

func newPrebuiltStore[K comparable, T any](newHeader headerFactory[K, T]) *prebuiltStore[K, T] {
	return &prebuiltStore[K, T]{newHeader: newHeader}
}

func (s *prebuiltStore[K, T]) len() int        { return len(s.slots) }
func (s *prebuiltStore[K, T]) at(i int) Slot   { return s.slots[i] }
func (s *prebuiltStore[K, T]) depth(i int) int { return s.slots[i].Depth() }

func (s *prebuiltStore[K, T]) headerNode(i int) *tree.Node[K, T] {
	if h, ok := s.slots[i].(*GroupHeaderSlot[K, T]); ok {
		return h.Node
	}
	return nil
}

func (s *prebuiltStore[K, T]) itemKey(i int) (K, bool) {
	if it, ok := s.slots[i].(*ItemSlot[K, T]); ok {
		return it.Key, true
	}
	var zero K
	return zero, false
}

func (s *prebuiltStore[K, T]) item(i int) (T, bool) {
	if it, ok := s.slots[i].(*ItemSlot[K, T]); ok {
		return it.Item, true
	}
	var zero T
	return zero, false
}

func (s *prebuiltStore[K, T]) view(start, end int) []Slot {
	return s.slots[start:end:end]
}

func (s *prebuiltStore[K, T]) materialize(loc location[K, T], index int) Slot {
	if loc.isHeader() {
		return s.newHeader(loc.node, loc.depth, index)
	}
	return &ItemSlot[K, T]{
		index: index,
		depth: loc.depth,
		node:  loc.node,
		pos:   loc.item,
		Key:   loc.node.Keys()[loc.item],
		Item:  loc.node.Items()[loc.item],
	}
}

func (s *prebuiltStore[K, T]) locate(i int) location[K, T] {
	switch v := s.slots[i].(type) {
	case *GroupHeaderSlot[K, T]:
		return location[K, T]{node: v.Node, item: -1, depth: v.depth}
	case *ItemSlot[K, T]:
		return location[K, T]{node: v.node, item: v.pos, depth: v.depth}
	}
	return location[K, T]{}
}

func (s *prebuiltStore[K, T]) replace(locs []location[K, T]) {
	slots := make([]Slot, len(locs))
	for i, loc := range locs {
		slots[i] = s.materialize(loc, i)
	}
	s.slots = slots
}

func (s *prebuiltStore[K, T]) splice(at, n int, locs []location[K, T]) int {
	tail := len(s.slots) - at - n
	inserted := make([]Slot, len(locs))
	for i, loc := range locs {
		inserted[i] = s.materialize(loc, at+i)
	}
	s.slots = slices.Replace(s.slots, at, at+n, inserted...)
	if len(locs) == n {
		return 0
	}
	for i := at + len(inserted); i < len(s.slots); i++ {
		s.slots[i].(indexed).setIndex(i)
	}
	return tail
}

type indexed interface {
	setIndex(i int)
}

func (s *ItemSlot[K, T]) setIndex(i int)        { s.index = i }
func (s *GroupHeaderSlot[K, T]) setIndex(i int) { s.index = i }

func (s *prebuiltStore[K, T]) setCollapsed(i int, collapsed bool) {
	if h, ok := s.slots[i].(*GroupHeaderSlot[K, T]); ok {
		h.IsCollapsed = collapsed
	}
}

func (s *prebuiltStore[K, T]) reset() { s.slots = nil }

//---------------------
// On demand
//---------------------

// onDemandStore keeps only location records and builds slot objects on
// access. Every call to at allocates.
type onDemandStore[K comparable, T any] struct {
	locs      []location[K, T]
	newHeader headerFactory[K, T]
}

func newOnDemandStore[K comparable, T any](newHeader headerFactory[K, T]) *onDemandStore[K, T] {
	return &onDemandStore[K, T]{newHeader: newHeader}
}

func (s *onDemandStore[K, T]) len() int        { return len(s.locs) }
func (s *onDemandStore[K, T]) depth(i int) int { return s.locs[i].depth }

func (s *onDemandStore[K, T]) at(i int) Slot {
	loc := s.locs[i]
	if loc.isHeader() {
		return s.newHeader(loc.node, loc.depth, i)
	}
	key, _ := s.itemKey(i)
	item, _ := s.item(i)
	return &ItemSlot[K, T]{index: i, depth: loc.depth, node: loc.node, pos: loc.item, Key: key, Item: item}
}

func (s *onDemandStore[K, T]) locate(i int) location[K, T] { return s.locs[i] }

func (s *onDemandStore[K, T]) headerNode(i int) *tree.Node[K, T] {
	if loc := s.locs[i]; loc.isHeader() {
		return loc.node
	}
	return nil
}

func (s *onDemandStore[K, T]) itemKey(i int) (K, bool) {
	loc := s.locs[i]
	if loc.isHeader() || loc.item >= loc.node.Len() {
		var zero K
		return zero, false
	}
	return loc.node.Keys()[loc.item], true
}

func (s *onDemandStore[K, T]) item(i int) (T, bool) {
	loc := s.locs[i]
	if loc.isHeader() || loc.item >= loc.node.Len() {
		var zero T
		return zero, false
	}
	return loc.node.Items()[loc.item], true
}

func (s *onDemandStore[K, T]) view(start, end int) []Slot {
	out := make([]Slot, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, s.at(i))
	}
	return out
}

func (s *onDemandStore[K, T]) replace(locs []location[K, T]) { s.locs = locs }

func (s *onDemandStore[K, T]) splice(at, n int, locs []location[K, T]) int {
	tail := len(s.locs) - at - n
	s.locs = slices.Replace(s.locs, at, at+n, locs...)
	if len(locs) == n {
		return 0
	}
	// Indices are positional here, so shifting the tail is the copy above.
	return tail
}

func (s *onDemandStore[K, T]) setCollapsed(int, bool) {}

func (s *onDemandStore[K, T]) reset() { s.locs = nil }
