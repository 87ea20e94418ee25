package controller

import (
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-slots/pkg/filter"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
	"github.com/mattsolo1/grove-slots/pkg/tree"
)

// Controller owns the record tree and is the upstream source of a
// slots.Manager. Every mutation regroups the records into the same root node,
// keeps the collapse state of groups whose ids survive, and notifies once.
type Controller struct {
	root     *grouping.Node
	records  map[string]models.Record
	order    []string
	builder  grouping.Builder
	query    filter.Query
	notifier tree.Notifier
	log      logrus.FieldLogger
}

var _ slots.Source[string, models.Record] = (*Controller)(nil)

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRules groups records by rules, outermost first.
func WithRules(rules ...grouping.Rule) Option {
	return func(c *Controller) { c.builder.Rules = rules }
}

// WithNatural builds a directory tree from record paths instead of groups.
func WithNatural() Option {
	return func(c *Controller) { c.builder.Natural = true }
}

// WithCompare sets the record order inside groups.
func WithCompare(cmp grouping.Compare) Option {
	return func(c *Controller) { c.builder.Compare = cmp }
}

// New creates an empty controller.
func New(opts ...Option) *Controller {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Controller{
		root:    tree.NewRoot[string, models.Record](models.Key),
		records: make(map[string]models.Record),
		log:     discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Root() *grouping.Node { return c.root }

func (c *Controller) Filter() slots.Filter[models.Record] { return c.query }

// Subscribe fires fn after every controller mutation and after any notifying
// mutation made directly on the tree.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	a := c.notifier.Subscribe(fn)
	b := c.root.Subscribe(fn)
	return func() {
		a()
		b()
	}
}

// Len is the number of records, regardless of grouping or filter.
func (c *Controller) Len() int { return len(c.order) }

// Records returns the records in insertion order.
func (c *Controller) Records() []models.Record {
	out := make([]models.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

// Record looks up a record by id.
func (c *Controller) Record(id string) (models.Record, bool) {
	r, ok := c.records[id]
	return r, ok
}

// SetRecords replaces every record.
func (c *Controller) SetRecords(records []models.Record) {
	c.records = make(map[string]models.Record, len(records))
	c.order = c.order[:0]
	for _, r := range records {
		if _, ok := c.records[r.ID]; !ok {
			c.order = append(c.order, r.ID)
		}
		c.records[r.ID] = r
	}
	c.refresh("set records")
}

// Put inserts or replaces a record.
func (c *Controller) Put(r models.Record) {
	if _, ok := c.records[r.ID]; !ok {
		c.order = append(c.order, r.ID)
	}
	c.records[r.ID] = r
	c.refresh("put")
}

// Delete removes a record. Unknown ids are a no-op.
func (c *Controller) Delete(id string) bool {
	if _, ok := c.records[id]; !ok {
		return false
	}
	delete(c.records, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	c.refresh("delete")
	return true
}

// SetRules switches to rule-based grouping.
func (c *Controller) SetRules(rules ...grouping.Rule) {
	c.builder.Rules = rules
	c.builder.Natural = false
	c.refresh("set rules")
}

// SetNatural switches between the directory tree and rule-based groups.
func (c *Controller) SetNatural(natural bool) {
	if c.builder.Natural == natural {
		return
	}
	c.builder.Natural = natural
	c.refresh("set natural")
}

// SetComparator changes the record order.
func (c *Controller) SetComparator(cmp grouping.Compare) {
	c.builder.Compare = cmp
	c.refresh("set comparator")
}

// Query returns the active filter query.
func (c *Controller) Query() filter.Query { return c.query }

// SetFilter replaces the filter. The tree is unchanged; subscribers are
// notified so projections re-evaluate visibility.
func (c *Controller) SetFilter(q filter.Query) {
	c.query = q
	c.log.WithField("filter", q.String()).Debug("filter changed")
	c.notifier.Fire()
}

// CollapsedIDs lists the ids of collapsed groups in breadth-first order.
func (c *Controller) CollapsedIDs() []string {
	var ids []string
	for n := range c.root.Descendants() {
		if n.IsCollapsed() {
			ids = append(ids, n.ID())
		}
	}
	return ids
}

// RestoreCollapsed collapses the listed groups and expands all others, then
// notifies once.
func (c *Controller) RestoreCollapsed(ids []string) {
	c.applyCollapsed(ids)
	c.notifier.Fire()
}

func (c *Controller) applyCollapsed(ids []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for n := range c.root.Descendants() {
		state := tree.Expand
		if _, ok := want[n.ID()]; ok {
			state = tree.Collapse
		}
		n.Collapse(state, false)
	}
}

func (c *Controller) refresh(reason string) {
	collapsed := c.CollapsedIDs()
	c.builder.Build(c.root, c.Records())
	c.applyCollapsed(collapsed)
	c.log.WithFields(logrus.Fields{
		"reason":  reason,
		"records": len(c.order),
		"groups":  len(c.root.Children()),
	}).Debug("regrouped records")
	c.notifier.Fire()
}
