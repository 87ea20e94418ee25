package slots

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Debug verifies the slot array against a fresh traversal after every
// incremental collapse or expand and panics on a mismatch. The check costs a
// full traversal, so it is meant for tests.
var Debug = false

type settings struct {
	onDemand   bool
	logger     logrus.FieldLogger
	instr      Instrumentation
	aggregator any
}

// Option configures a Manager.
type Option func(*settings)

// WithOnDemand stores location records instead of slot objects. Slot and
// SlotRange then allocate on every call.
func WithOnDemand() Option {
	return func(s *settings) { s.onDemand = true }
}

// WithLogger sets the logger used for debug tracing and violation reports.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInstrumentation reports rebuild and incremental update sizes to i.
func WithInstrumentation(i Instrumentation) Option {
	return func(s *settings) {
		if i != nil {
			s.instr = i
		}
	}
}

// WithAggregator computes per-group aggregates with a. The item type must
// match the manager's.
func WithAggregator[T any](a Aggregator[T]) Option {
	return func(s *settings) { s.aggregator = a }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
