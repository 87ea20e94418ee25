package grouping

import (
	"slices"
	"sort"
	"strings"

	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Node is the tree node type used for records.
type Node = tree.Node[string, models.Record]

// Builder fills a tree from a flat record list. With Natural set, the tree
// mirrors record paths (directories become plain nodes) and Rules are
// ignored; otherwise every rule adds one level of groups, outermost first.
type Builder struct {
	Rules   []Rule
	Natural bool
	Order   Less
	Compare Compare
}

// Build replaces the children and items of root. It does not notify; the
// caller decides when the rebuilt tree is announced.
func (b Builder) Build(root *Node, records []models.Record) {
	if b.Order == nil {
		b.Order = ValueOrder()
	}
	if b.Compare == nil {
		b.Compare = TitleOrder()
	}
	root.ClearChildren(false)
	root.Clear(false)

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, b.Compare)

	if b.Natural {
		b.buildPaths(root, sorted)
		return
	}
	b.place(root, sorted, 0)
}

// idEscaper keeps "/" inside a value from forging a nested group id, so ids
// stay unique across the whole tree.
var idEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

func (b Builder) place(parent *Node, records []models.Record, level int) {
	if level >= len(b.Rules) {
		parent.AddAll(records, false)
		return
	}
	rule := b.Rules[level]
	buckets := make(map[string][]models.Record)
	var values []string
	for _, r := range records {
		vals := rule.Values(r)
		if len(vals) == 0 {
			vals = []string{NoValue}
		}
		seen := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			if _, ok := buckets[v]; !ok {
				values = append(values, v)
			}
			buckets[v] = append(buckets[v], r)
		}
	}
	sort.SliceStable(values, func(i, j int) bool { return b.Order(values[i], values[j]) })

	for _, v := range values {
		id := idEscaper.Replace(v)
		if parent.HasParent() {
			id = parent.ID() + "/" + id
		}
		child := parent.NewChild(id)
		child.SetExtra(Option{Rule: rule.Name, Value: v})
		b.place(child, buckets[v], level+1)
	}
}

// dirNode is an in-memory directory used while building a natural tree.
type dirNode struct {
	name      string
	fullName  string // relative path, e.g. "architecture/decisions"
	children  map[string]*dirNode
	childKeys []string
	records   []models.Record
}

func newDirNode(name, fullName string) *dirNode {
	return &dirNode{
		name:     name,
		fullName: fullName,
		children: make(map[string]*dirNode),
	}
}

func (b Builder) buildPaths(root *Node, records []models.Record) {
	top := newDirNode("", "")
	for _, r := range records {
		current := top
		if dir := r.Dir(); dir != "" {
			parts := strings.Split(dir, "/")
			for i, part := range parts {
				if _, ok := current.children[part]; !ok {
					current.children[part] = newDirNode(part, strings.Join(parts[:i+1], "/"))
					current.childKeys = append(current.childKeys, part)
				}
				current = current.children[part]
			}
		}
		current.records = append(current.records, r)
	}
	b.emitDir(root, top)
}

func (b Builder) emitDir(parent *Node, dir *dirNode) {
	sort.SliceStable(dir.childKeys, func(i, j int) bool { return b.Order(dir.childKeys[i], dir.childKeys[j]) })
	for _, key := range dir.childKeys {
		sub := dir.children[key]
		child := parent.NewChild(sub.fullName)
		b.emitDir(child, sub)
	}
	parent.AddAll(dir.records, false)
}
