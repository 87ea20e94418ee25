package aggregate

import (
	"errors"
	"fmt"
	"math"

	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Op is an aggregation function.
type Op string

const (
	Count Op = "count"
	Sum   Op = "sum"
	Min   Op = "min"
	Max   Op = "max"
	Avg   Op = "avg"
)

// Spec is one named aggregate over a numeric record field. Count ignores
// Field when it is empty and counts records otherwise only those carrying
// the field.
type Spec struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Op    Op     `mapstructure:"op" yaml:"op"`
	Field string `mapstructure:"field" yaml:"field,omitempty"`
}

// Validate checks that the spec can be evaluated.
func (s Spec) Validate() error {
	if s.Name == "" {
		return errors.New("aggregate name is required")
	}
	switch s.Op {
	case Count:
		return nil
	case Sum, Min, Max, Avg:
		if s.Field == "" {
			return fmt.Errorf("aggregate %q: op %s needs a field", s.Name, s.Op)
		}
		return nil
	}
	return fmt.Errorf("aggregate %q: unknown op %q", s.Name, s.Op)
}

// Set evaluates a list of specs and implements slots.Aggregator for
// records.
type Set struct {
	specs    []Spec
	notifier tree.Notifier
}

var _ slots.Aggregator[models.Record] = (*Set)(nil)

// NewSet validates specs and returns a set evaluating them.
func NewSet(specs ...Spec) (*Set, error) {
	s := &Set{}
	if err := s.validate(specs); err != nil {
		return nil, err
	}
	s.specs = append([]Spec(nil), specs...)
	return s, nil
}

func (s *Set) validate(specs []Spec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return err
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("duplicate aggregate %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}

// Specs returns a copy of the configured specs.
func (s *Set) Specs() []Spec { return append([]Spec(nil), s.specs...) }

// SetSpecs replaces the specs and notifies subscribers.
func (s *Set) SetSpecs(specs []Spec) error {
	if err := s.validate(specs); err != nil {
		return err
	}
	s.specs = append([]Spec(nil), specs...)
	s.notifier.Fire()
	return nil
}

func (s *Set) IsEmpty() bool { return len(s.specs) == 0 }

func (s *Set) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// Aggregate evaluates every spec over items. Min, max and avg are omitted
// when no item carries the field.
func (s *Set) Aggregate(items []models.Record) slots.Aggregates {
	out := make(slots.Aggregates, len(s.specs))
	for _, spec := range s.specs {
		if v, ok := evaluate(spec, items); ok {
			out[spec.Name] = v
		}
	}
	return out
}

func evaluate(spec Spec, items []models.Record) (float64, bool) {
	if spec.Op == Count && spec.Field == "" {
		return float64(len(items)), true
	}
	var (
		n   int
		sum float64
		lo  = math.Inf(1)
		hi  = math.Inf(-1)
	)
	for _, r := range items {
		v, ok := r.Field(spec.Field)
		if !ok {
			continue
		}
		n++
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	switch spec.Op {
	case Count:
		return float64(n), true
	case Sum:
		return sum, true
	}
	if n == 0 {
		return 0, false
	}
	switch spec.Op {
	case Min:
		return lo, true
	case Max:
		return hi, true
	case Avg:
		return sum / float64(n), true
	}
	return 0, false
}
