package slots

import (
	"fmt"
)

// Verify compares the current slot array with a fresh traversal of the tree
// and reports the first difference. A nil error means the incremental
// bookkeeping is indistinguishable from a full rebuild.
func (m *Manager[K, T]) Verify() error {
	if m.disposed {
		return nil
	}
	want := m.collect(m.source.Root(), 0, m.activeFilter(), nil)
	if got := m.store.len(); got != len(want) {
		return fmt.Errorf("slot count %d, traversal yields %d", got, len(want))
	}
	for i, loc := range want {
		s := m.store.at(i)
		if s.Index() != i {
			return fmt.Errorf("slot %d carries index %d", i, s.Index())
		}
		if s.Depth() != loc.depth {
			return fmt.Errorf("slot %d has depth %d, want %d", i, s.Depth(), loc.depth)
		}
		if loc.isHeader() {
			if m.store.headerNode(i) != loc.node {
				return fmt.Errorf("slot %d: want header of %q", i, loc.node.ID())
			}
			h := s.(*GroupHeaderSlot[K, T])
			if h.IsCollapsed != loc.node.IsCollapsed() {
				return fmt.Errorf("header %q at %d: collapsed=%v, node says %v", loc.node.ID(), i, h.IsCollapsed, loc.node.IsCollapsed())
			}
			continue
		}
		key, ok := m.store.itemKey(i)
		if !ok {
			return fmt.Errorf("slot %d: want an item slot", i)
		}
		if want := loc.node.Keys()[loc.item]; key != want {
			return fmt.Errorf("slot %d holds key %v, want %v", i, key, want)
		}
	}
	return nil
}
