package render

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

// Header is the slot header type for records.
type Header = slots.GroupHeaderSlot[string, models.Record]

// Rows locates projection rows in the tree. *slots.Manager implements it.
type Rows interface {
	Position(i int) (node *grouping.Node, item int, ok bool)
	LastVisibleItem(n *grouping.Node) int
}

var _ Rows = (*slots.Manager[string, models.Record])(nil)

// Prefixer computes tree connectors for a window of rows. It reads only the
// requested rows and the tree nodes above them, never neighbouring rows.
// Results are memoized for one render pass.
type Prefixer struct {
	rows     Rows
	lastItem map[*grouping.Node]int
	lastNode map[*grouping.Node]bool
}

func NewPrefixer(rows Rows) *Prefixer {
	return &Prefixer{
		rows:     rows,
		lastItem: make(map[*grouping.Node]int),
		lastNode: make(map[*grouping.Node]bool),
	}
}

func (p *Prefixer) visibleTail(n *grouping.Node) int {
	if v, ok := p.lastItem[n]; ok {
		return v
	}
	v := p.rows.LastVisibleItem(n)
	p.lastItem[n] = v
	return v
}

// isLastNode reports whether n's header is the last row among its siblings:
// n is its parent's last child and no parent item follows it.
func (p *Prefixer) isLastNode(n *grouping.Node) bool {
	if v, ok := p.lastNode[n]; ok {
		return v
	}
	v := true
	if parent := n.Parent(); parent != nil {
		children := parent.Children()
		v = children[len(children)-1] == n && p.visibleTail(parent) < 0
	}
	p.lastNode[n] = v
	return v
}

// Prefix renders the connector for row i: "│ " for open ancestor levels,
// blanks below ancestors that were last, and "└ " or "│ " for the row itself.
func (p *Prefixer) Prefix(i int) string {
	node, item, ok := p.rows.Position(i)
	if !ok {
		return ""
	}
	// owner is the header directly above the row.
	var (
		last  bool
		owner *grouping.Node
		depth int
	)
	if item < 0 {
		last = p.isLastNode(node)
		owner = node.Parent()
		depth = node.Depth()
	} else {
		last = item == p.visibleTail(node)
		owner = node
		depth = node.Depth() + 1
	}
	if depth <= 0 {
		return ""
	}
	levels := make([]string, depth-1)
	for k := depth - 2; k >= 0 && owner != nil; k-- {
		if p.isLastNode(owner) {
			levels[k] = "  "
		} else {
			levels[k] = "│ "
		}
		owner = owner.Parent()
	}
	if last {
		return strings.Join(levels, "") + "└ "
	}
	return strings.Join(levels, "") + "│ "
}

// Label is the display name of a header.
func Label(h *Header) string { return NodeLabel(h.Node) }

// NodeLabel names a group node: the title-cased option value for rule
// groups, the last path element for directories.
func NodeLabel(n *grouping.Node) string {
	if opt, ok := n.Extra().(grouping.Option); ok {
		return grouping.Label(opt.Value)
	}
	return path.Base(n.ID())
}

// FoldIndicator is the marker in front of a header.
func FoldIndicator(h *Header) string {
	if h.IsCollapsed {
		return "▶ "
	}
	return "▼ "
}

// Counts renders "(items)" or "(items/total)" when nested groups add more.
func Counts(h *Header) string {
	if h.TotalCount != h.ItemCount {
		return fmt.Sprintf("(%d/%d)", h.ItemCount, h.TotalCount)
	}
	return fmt.Sprintf("(%d)", h.ItemCount)
}

// Aggregates renders aggregates as "name=value" pairs sorted by name.
func Aggregates(a slots.Aggregates) string {
	if len(a) == 0 {
		return ""
	}
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strconv.FormatFloat(a[name], 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Line renders one slot as plain text.
func Line(s slots.Slot, prefix string) string {
	switch v := s.(type) {
	case *Header:
		line := prefix + FoldIndicator(v) + Label(v) + " " + Counts(v)
		if agg := Aggregates(v.Aggregates); agg != "" {
			line += "  " + agg
		}
		return line
	case *slots.ItemSlot[string, models.Record]:
		line := prefix + v.Item.Title
		if len(v.Item.Tags) > 0 {
			line += "  #" + strings.Join(v.Item.Tags, " #")
		}
		return line
	}
	return prefix
}
