package slots

import (
	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Slot is one row of the flattened, visible projection.
type Slot interface {
	// Index is the current position in the slot array. It changes in place
	// when slots before it are inserted or removed.
	Index() int
	// Depth is the nesting level used for indentation.
	Depth() int
	IsHeader() bool
}

// ItemSlot is one visible occurrence of an item. With multi-value grouping
// the same item can occupy several item slots.
type ItemSlot[K comparable, T any] struct {
	index int
	depth int
	node  *tree.Node[K, T]
	pos   int

	Key  K
	Item T
}

func (s *ItemSlot[K, T]) Index() int     { return s.index }
func (s *ItemSlot[K, T]) Depth() int     { return s.depth }
func (s *ItemSlot[K, T]) IsHeader() bool { return false }

// GroupHeaderSlot is the header row of a group or tree node. The node is
// referenced, not owned.
type GroupHeaderSlot[K comparable, T any] struct {
	index int
	depth int

	Node *tree.Node[K, T]
	// GroupOptionID is empty for natural tree nodes.
	GroupOptionID string
	IsCollapsed   bool
	ItemCount     int
	TotalCount    int
	Aggregates    Aggregates
}

func (s *GroupHeaderSlot[K, T]) Index() int     { return s.index }
func (s *GroupHeaderSlot[K, T]) Depth() int     { return s.depth }
func (s *GroupHeaderSlot[K, T]) IsHeader() bool { return true }

// ID is the id of the header's node.
func (s *GroupHeaderSlot[K, T]) ID() string { return s.Node.ID() }

// IsGroup reports whether the header was produced by a grouping rule.
func (s *GroupHeaderSlot[K, T]) IsGroup() bool { return s.GroupOptionID != "" }

// GroupInfo is the transient view handed to CollapseWhere and ExpandWhere.
type GroupInfo[K comparable, T any] struct {
	Node       *tree.Node[K, T]
	Depth      int
	ItemCount  int
	TotalCount int
}

// GroupOption is implemented by node metadata that marks a node as the
// product of a grouping rule.
type GroupOption interface {
	GroupOptionID() string
}

func groupOptionID(extra any) string {
	if opt, ok := extra.(GroupOption); ok && opt != nil {
		return opt.GroupOptionID()
	}
	return ""
}

// Aggregates is the per-group summary computed by an Aggregator, keyed by
// aggregate name.
type Aggregates map[string]float64
