package tree

import "slices"

// Listener is called after a notifying mutation.
type Listener func()

// Notifier is a small listener registry. The zero value is ready to use.
type Notifier struct {
	next int
	fns  map[int]Listener
}

// Subscribe registers fn. The returned func removes it again and is safe to
// call more than once.
func (l *Notifier) Subscribe(fn Listener) (unsubscribe func()) {
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	l.next++
	id := l.next
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

// Len is the number of live subscriptions.
func (l *Notifier) Len() int { return len(l.fns) }

// Fire calls every listener in subscription order.
func (l *Notifier) Fire() {
	if len(l.fns) == 0 {
		return
	}
	// Listeners may unsubscribe while being called.
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := l.fns[id]; ok {
			fn()
		}
	}
}

// Reset drops every subscription.
func (l *Notifier) Reset() {
	l.fns = nil
}

// Subscribe registers fn for change notifications on n and on every node
// below it.
func (n *Node[K, T]) Subscribe(fn Listener) (unsubscribe func()) {
	return n.listeners.Subscribe(fn)
}

// Notify fires the listeners of n and then those of each ancestor, so a
// subscriber on the root sees every change in the tree.
func (n *Node[K, T]) Notify() {
	for p := n; p != nil; p = p.parent {
		p.listeners.Fire()
	}
}
