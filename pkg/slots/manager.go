package slots

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Manager maintains the flat slot array for a tree source. Upstream changes
// trigger a full rebuild; collapsing or expanding a single group splices the
// affected run in place.
//
// A Manager is not safe for concurrent use.
type Manager[K comparable, T any] struct {
	source   Source[K, T]
	agg      Aggregator[T]
	log      logrus.FieldLogger
	instr    Instrumentation
	store    slotStore[K, T]
	onDemand bool

	nodes map[string]*tree.Node[K, T]
	aggs  map[*tree.Node[K, T]]Aggregates

	version     uint64
	unique      int
	uniqueValid bool

	listeners   tree.Notifier
	unsubscribe []func()
	disposed    bool
}

// New creates a manager, subscribes it to source (and to the aggregator, if
// any) and performs the initial build.
func New[K comparable, T any](source Source[K, T], opts ...Option) *Manager[K, T] {
	s := settings{
		logger: discardLogger(),
		instr:  noInstrumentation{},
	}
	for _, opt := range opts {
		opt(&s)
	}

	m := &Manager[K, T]{
		source:   source,
		log:      s.logger,
		instr:    s.instr,
		onDemand: s.onDemand,
	}
	if a, ok := s.aggregator.(Aggregator[T]); ok {
		m.agg = a
	}
	if s.onDemand {
		m.store = newOnDemandStore[K, T](m.newHeader)
	} else {
		m.store = newPrebuiltStore[K, T](m.newHeader)
	}

	m.unsubscribe = append(m.unsubscribe, source.Subscribe(m.onUpstreamChange))
	if m.agg != nil {
		m.unsubscribe = append(m.unsubscribe, m.agg.Subscribe(m.onUpstreamChange))
	}
	m.build()
	return m
}

// Subscribe registers fn to be called once after every change of the slot
// array.
func (m *Manager[K, T]) Subscribe(fn func()) (unsubscribe func()) {
	if m.disposed {
		return func() {}
	}
	return m.listeners.Subscribe(fn)
}

// Version increments on every rebuild and every incremental update.
func (m *Manager[K, T]) Version() uint64 { return m.version }

// OnDemand reports the storage mode chosen at construction.
func (m *Manager[K, T]) OnDemand() bool { return m.onDemand }

// TotalSlots is the length of the slot array.
func (m *Manager[K, T]) TotalSlots() int {
	if m.disposed {
		return 0
	}
	return m.store.len()
}

func (m *Manager[K, T]) inBounds(i int) bool {
	return !m.disposed && i >= 0 && i < m.store.len()
}

// Slot returns the slot at index i.
func (m *Manager[K, T]) Slot(i int) (Slot, bool) {
	if !m.inBounds(i) {
		return nil, false
	}
	return m.store.at(i), true
}

// Header returns the slot at index i if it is a group header.
func (m *Manager[K, T]) Header(i int) (*GroupHeaderSlot[K, T], bool) {
	if !m.IsHeader(i) {
		return nil, false
	}
	h, ok := m.store.at(i).(*GroupHeaderSlot[K, T])
	return h, ok
}

// IsHeader reports whether index i holds a group header.
func (m *Manager[K, T]) IsHeader(i int) bool {
	return m.inBounds(i) && m.store.headerNode(i) != nil
}

// Item returns the item at index i if it is an item slot.
func (m *Manager[K, T]) Item(i int) (T, bool) {
	if !m.inBounds(i) {
		var zero T
		return zero, false
	}
	return m.store.item(i)
}

// SlotRange returns up to count slots starting at start, clamped to the
// array. In prebuilt mode the result shares the manager's backing array and
// is only valid until the next change.
func (m *Manager[K, T]) SlotRange(start, count int) []Slot {
	if m.disposed || count <= 0 {
		return nil
	}
	n := m.store.len()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + count
	if end > n || end < start {
		end = n
	}
	return m.store.view(start, end)
}

// Rebuild regenerates the slot array from the tree.
func (m *Manager[K, T]) Rebuild() {
	if m.disposed {
		return
	}
	m.build()
	m.changed()
}

func (m *Manager[K, T]) onUpstreamChange() {
	m.Rebuild()
}

func (m *Manager[K, T]) build() {
	start := time.Now()
	m.nodes = make(map[string]*tree.Node[K, T])
	m.aggs = make(map[*tree.Node[K, T]]Aggregates)
	locs := m.collect(m.source.Root(), 0, m.activeFilter(), nil)
	m.store.replace(locs)
	elapsed := time.Since(start)
	m.instr.Rebuilt(len(locs), elapsed)
	m.log.WithFields(logrus.Fields{
		"slots":   len(locs),
		"elapsed": elapsed,
	}).Debug("rebuilt slot projection")
}

func (m *Manager[K, T]) changed() {
	m.version++
	m.uniqueValid = false
	m.listeners.Fire()
}

func (m *Manager[K, T]) activeFilter() Filter[T] {
	f := m.source.Filter()
	if f == nil || !f.IsNotEmpty() {
		return nil
	}
	return f
}

// collect appends the contents of n (child groups first, then the items that
// pass f) at the given depth.
func (m *Manager[K, T]) collect(n *tree.Node[K, T], depth int, f Filter[T], out []location[K, T]) []location[K, T] {
	for _, c := range n.Children() {
		out = m.collectNode(c, depth, f, out)
	}
	for i, item := range n.Items() {
		if f == nil || f.Apply(item) {
			out = append(out, location[K, T]{node: n, item: i, depth: depth})
		}
	}
	return out
}

func (m *Manager[K, T]) collectNode(n *tree.Node[K, T], depth int, f Filter[T], out []location[K, T]) []location[K, T] {
	out = append(out, location[K, T]{node: n, item: -1, depth: depth})
	if _, ok := m.nodes[n.ID()]; !ok {
		m.nodes[n.ID()] = n
	}
	if n.IsCollapsed() {
		return out
	}
	return m.collect(n, depth+1, f, out)
}

func (m *Manager[K, T]) newHeader(node *tree.Node[K, T], depth, index int) *GroupHeaderSlot[K, T] {
	return &GroupHeaderSlot[K, T]{
		index:         index,
		depth:         depth,
		Node:          node,
		GroupOptionID: groupOptionID(node.Extra()),
		IsCollapsed:   node.IsCollapsed(),
		ItemCount:     node.Len(),
		TotalCount:    node.FlattenedLen(),
		Aggregates:    m.aggregatesFor(node),
	}
}

func (m *Manager[K, T]) aggregatesFor(node *tree.Node[K, T]) Aggregates {
	if m.agg == nil || m.agg.IsEmpty() {
		return nil
	}
	if a, ok := m.aggs[node]; ok {
		return a
	}
	a := m.agg.Aggregate(node.CollectItems())
	m.aggs[node] = a
	return a
}

// resolve finds a group node by id, first in the cache of visible nodes and
// then in the tree. Group ids are expected to be unique across the whole
// tree; with duplicates the first match wins.
func (m *Manager[K, T]) resolve(id string) *tree.Node[K, T] {
	root := m.source.Root()
	if n, ok := m.nodes[id]; ok && n.Root() == root {
		return n
	}
	return root.FindNode(id)
}

// headerIndex scans for the header of node; -1 when an ancestor hides it.
func (m *Manager[K, T]) headerIndex(node *tree.Node[K, T]) int {
	for i, n := 0, m.store.len(); i < n; i++ {
		if m.store.headerNode(i) == node {
			return i
		}
	}
	return -1
}

// Collapse hides the contents of the group with the given id. It reports
// whether the group's state changed; unknown ids and already collapsed
// groups are no-ops.
func (m *Manager[K, T]) Collapse(id string) bool {
	if m.disposed {
		return false
	}
	node := m.resolve(id)
	if node == nil || !node.Collapse(tree.Collapse, false) {
		return false
	}

	at := m.headerIndex(node)
	if at < 0 {
		// Hidden by a collapsed ancestor; the flag is picked up when that
		// ancestor expands.
		m.changed()
		return true
	}
	d := m.store.depth(at)
	end := at + 1
	for end < m.store.len() && m.store.depth(end) > d {
		end++
	}
	removed := end - at - 1

	m.store.setCollapsed(at, true)
	shifted := m.store.splice(at+1, removed, nil)
	m.instr.Collapsed(removed, shifted)
	m.log.WithFields(logrus.Fields{
		"group":   id,
		"removed": removed,
		"shifted": shifted,
	}).Debug("collapsed group")
	m.afterIncremental("collapse", id)
	return true
}

// Expand shows the contents of the group with the given id.
func (m *Manager[K, T]) Expand(id string) bool {
	if m.disposed {
		return false
	}
	node := m.resolve(id)
	if node == nil || !node.Collapse(tree.Expand, false) {
		return false
	}

	at := m.headerIndex(node)
	if at < 0 {
		m.changed()
		return true
	}
	run := m.collect(node, m.store.depth(at)+1, m.activeFilter(), nil)
	for _, loc := range run {
		if loc.isHeader() {
			delete(m.aggs, loc.node)
		}
	}

	m.store.setCollapsed(at, false)
	shifted := m.store.splice(at+1, 0, run)
	m.instr.Expanded(len(run), shifted)
	m.log.WithFields(logrus.Fields{
		"group":    id,
		"inserted": len(run),
		"shifted":  shifted,
	}).Debug("expanded group")
	m.afterIncremental("expand", id)
	return true
}

// ToggleCollapse flips the collapse state of the group with the given id.
func (m *Manager[K, T]) ToggleCollapse(id string) bool {
	if m.disposed {
		return false
	}
	node := m.resolve(id)
	if node == nil {
		return false
	}
	if node.IsCollapsed() {
		return m.Expand(id)
	}
	return m.Collapse(id)
}

// afterIncremental notifies after a splice. With Debug set the whole array
// is first verified against a fresh traversal and a mismatch panics.
func (m *Manager[K, T]) afterIncremental(op, id string) {
	if Debug {
		if err := m.Verify(); err != nil {
			panic(fmt.Sprintf("slots: %s %q left an inconsistent projection: %v", op, id, err))
		}
	}
	m.changed()
}

// CollapseAll collapses every group and rebuilds once.
func (m *Manager[K, T]) CollapseAll() {
	if m.disposed {
		return
	}
	if m.source.Root().CollapseAll() {
		m.Rebuild()
	}
}

// ExpandAll expands every group and rebuilds once.
func (m *Manager[K, T]) ExpandAll() {
	if m.disposed {
		return
	}
	if m.source.Root().ExpandAll() {
		m.Rebuild()
	}
}

// CollapseToLevel expands groups shallower than level, collapses the rest
// and rebuilds once.
func (m *Manager[K, T]) CollapseToLevel(level int) {
	if m.disposed {
		return
	}
	if m.source.Root().CollapseToLevel(level) {
		m.Rebuild()
	}
}

// CollapseWhere collapses every group for which pred returns true, then
// rebuilds and notifies once.
func (m *Manager[K, T]) CollapseWhere(pred func(GroupInfo[K, T]) bool) {
	m.applyWhere(pred, tree.Collapse)
}

// ExpandWhere is the mirror of CollapseWhere.
func (m *Manager[K, T]) ExpandWhere(pred func(GroupInfo[K, T]) bool) {
	m.applyWhere(pred, tree.Expand)
}

func (m *Manager[K, T]) applyWhere(pred func(GroupInfo[K, T]) bool, state tree.CollapseState) {
	if m.disposed || pred == nil {
		return
	}
	changed := false
	for n := range m.source.Root().Descendants() {
		info := GroupInfo[K, T]{
			Node:       n,
			Depth:      n.Depth(),
			ItemCount:  n.Len(),
			TotalCount: n.FlattenedLen(),
		}
		if pred(info) && n.Collapse(state, false) {
			changed = true
		}
	}
	if changed {
		m.Rebuild()
	}
}

// IndexOfKey returns the index of the first visible slot holding key, or -1
// when the key is absent, filtered out or inside a collapsed group.
func (m *Manager[K, T]) IndexOfKey(key K) int {
	if m.disposed {
		return -1
	}
	root := m.source.Root()
	item, ok := root.FindItem(key)
	if !ok {
		return -1
	}
	f := m.activeFilter()
	if f != nil && !f.Apply(item) {
		return -1
	}
	idx := 0
	if m.seek(root, key, f, &idx) {
		return idx
	}
	return -1
}

// seek walks the contents of n in build order, counting the slots it passes.
func (m *Manager[K, T]) seek(n *tree.Node[K, T], key K, f Filter[T], idx *int) bool {
	for _, c := range n.Children() {
		*idx++
		if c.IsCollapsed() {
			continue
		}
		if m.seek(c, key, f, idx) {
			return true
		}
	}
	keys := n.Keys()
	for i, item := range n.Items() {
		if f != nil && !f.Apply(item) {
			continue
		}
		if keys[i] == key {
			return true
		}
		*idx++
	}
	return false
}

// AdjacentItem returns the nearest visible item after key's slot, or the
// nearest before it when key is the last visible item. Other slots holding
// the same key are skipped.
func (m *Manager[K, T]) AdjacentItem(key K) (T, bool) {
	var zero T
	i := m.IndexOfKey(key)
	if i < 0 {
		return zero, false
	}
	n := m.store.len()
	for j := i + 1; j < n; j++ {
		if item, ok := m.otherItem(j, key); ok {
			return item, true
		}
	}
	for j := i - 1; j >= 0; j-- {
		if item, ok := m.otherItem(j, key); ok {
			return item, true
		}
	}
	return zero, false
}

func (m *Manager[K, T]) otherItem(i int, key K) (T, bool) {
	var zero T
	if k, ok := m.store.itemKey(i); !ok || k == key {
		return zero, false
	}
	return m.store.item(i)
}

// Position locates slot i in the tree without materializing it: the node
// owning the row and the item's position in that node, -1 for the node's
// header.
func (m *Manager[K, T]) Position(i int) (node *tree.Node[K, T], item int, ok bool) {
	if !m.inBounds(i) {
		return nil, 0, false
	}
	loc := m.store.locate(i)
	if loc.node == nil || loc.item >= loc.node.Len() {
		return nil, 0, false
	}
	return loc.node, loc.item, true
}

// LastVisibleItem is the position of the last item of n that passes the
// filter, or -1 when none does. Only n's own items are read.
func (m *Manager[K, T]) LastVisibleItem(n *tree.Node[K, T]) int {
	if m.disposed || n == nil {
		return -1
	}
	f := m.activeFilter()
	items := n.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if f == nil || f.Apply(items[i]) {
			return i
		}
	}
	return -1
}

// UniqueItemCount is the number of distinct item keys among the visible item
// slots. It is computed lazily and cached until the next change.
func (m *Manager[K, T]) UniqueItemCount() int {
	if m.disposed {
		return 0
	}
	if m.uniqueValid {
		return m.unique
	}
	seen := make(map[K]struct{})
	for i, n := 0, m.store.len(); i < n; i++ {
		if k, ok := m.store.itemKey(i); ok {
			seen[k] = struct{}{}
		}
	}
	m.unique = len(seen)
	m.uniqueValid = true
	return m.unique
}

// Dispose detaches the manager from its source and aggregator and clears
// its caches. Every later call is a no-op.
func (m *Manager[K, T]) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
	m.listeners.Reset()
	m.store.reset()
	m.nodes = nil
	m.aggs = nil
	m.uniqueValid = false
}

// IsDisposed reports whether Dispose was called.
func (m *Manager[K, T]) IsDisposed() bool { return m.disposed }
