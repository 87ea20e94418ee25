package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mattsolo1/grove-slots/pkg/slots"
)

// Projection records slot projection activity. Each instance owns its
// registry so several managers (and tests) do not collide.
type Projection struct {
	registry *prometheus.Registry

	rebuilds        prometheus.Counter
	rebuildDuration prometheus.Histogram
	rebuildSize     prometheus.Histogram
	incremental     *prometheus.CounterVec
	touched         *prometheus.CounterVec
	shifted         prometheus.Counter
}

var _ slots.Instrumentation = (*Projection)(nil)

// New registers the projection metrics on a fresh registry.
func New() *Projection {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Projection{
		registry: reg,
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "slots_rebuilds_total",
			Help: "Full rebuilds of the slot array",
		}),
		rebuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slots_rebuild_duration_seconds",
			Help:    "Time to rebuild the slot array",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		rebuildSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slots_rebuild_size",
			Help:    "Slots produced by a rebuild",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),
		incremental: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slots_incremental_updates_total",
			Help: "Incremental collapse and expand operations",
		}, []string{"op"}),
		touched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slots_incremental_slots_total",
			Help: "Slots removed or inserted by incremental updates",
		}, []string{"op"}),
		shifted: f.NewCounter(prometheus.CounterOpts{
			Name: "slots_reindexed_total",
			Help: "Slots whose index shifted after an incremental update",
		}),
	}
}

func (p *Projection) Rebuilt(n int, elapsed time.Duration) {
	p.rebuilds.Inc()
	p.rebuildDuration.Observe(elapsed.Seconds())
	p.rebuildSize.Observe(float64(n))
}

func (p *Projection) Collapsed(removed, shifted int) {
	p.incremental.WithLabelValues("collapse").Inc()
	p.touched.WithLabelValues("collapse").Add(float64(removed))
	p.shifted.Add(float64(shifted))
}

func (p *Projection) Expanded(inserted, shifted int) {
	p.incremental.WithLabelValues("expand").Inc()
	p.touched.WithLabelValues("expand").Add(float64(inserted))
	p.shifted.Add(float64(shifted))
}

// Registry exposes the underlying registry.
func (p *Projection) Registry() *prometheus.Registry { return p.registry }

// Sample is one flattened metric value.
type Sample struct {
	Name  string
	Label string
	Value float64
}

// Snapshot flattens counters and histogram sums/counts into samples sorted
// by name.
func (p *Projection) Snapshot() ([]Sample, error) {
	families, err := p.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			label := ""
			for _, lp := range m.GetLabel() {
				label = lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, Sample{Name: mf.GetName(), Label: label, Value: m.GetCounter().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: mf.GetName() + "_count", Label: label, Value: float64(h.GetSampleCount())},
					Sample{Name: mf.GetName() + "_sum", Label: label, Value: h.GetSampleSum()},
				)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// Write prints a snapshot as aligned text.
func (p *Projection) Write(w io.Writer) error {
	samples, err := p.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		name := s.Name
		if s.Label != "" {
			name += "{" + s.Label + "}"
		}
		if _, err := fmt.Fprintf(w, "%-48s %g\n", name, s.Value); err != nil {
			return err
		}
	}
	return nil
}
