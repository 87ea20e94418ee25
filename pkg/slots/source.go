package slots

import (
	"time"

	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Source is the owner of the tree the manager projects. Subscribe must fire
// after every change that requires a rebuild (items, filter, grouping).
type Source[K comparable, T any] interface {
	Root() *tree.Node[K, T]
	// Filter may return nil when no filter is configured.
	Filter() Filter[T]
	Subscribe(fn func()) (unsubscribe func())
}

// Filter is the active item predicate.
type Filter[T any] interface {
	IsNotEmpty() bool
	Apply(item T) bool
}

// Aggregator computes a group summary from the group's full member set.
type Aggregator[T any] interface {
	IsEmpty() bool
	Aggregate(items []T) Aggregates
	Subscribe(fn func()) (unsubscribe func())
}

// Instrumentation receives timing and size information about projection
// updates. All methods are called synchronously.
type Instrumentation interface {
	Rebuilt(slots int, elapsed time.Duration)
	Collapsed(removed, shifted int)
	Expanded(inserted, shifted int)
}

type noInstrumentation struct{}

func (noInstrumentation) Rebuilt(int, time.Duration) {}
func (noInstrumentation) Collapsed(int, int)         {}
func (noInstrumentation) Expanded(int, int)          {}
