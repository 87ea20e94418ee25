package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-slots/pkg/controller"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

func values(t *testing.T, p *Projection) map[string]float64 {
	t.Helper()
	samples, err := p.Snapshot()
	require.NoError(t, err)
	out := make(map[string]float64, len(samples))
	for _, s := range samples {
		key := s.Name
		if s.Label != "" {
			key += "{" + s.Label + "}"
		}
		out[key] = s.Value
	}
	return out
}

func TestProjectionCountsManagerActivity(t *testing.T) {
	c := controller.New(controller.WithRules(grouping.ByKind()))
	c.SetRecords([]models.Record{
		{ID: "a", Title: "A", Kind: "note"},
		{ID: "b", Title: "B", Kind: "note"},
		{ID: "c", Title: "C", Kind: "task"},
	})
	p := New()
	m := slots.New[string, models.Record](c, slots.WithInstrumentation(p))
	defer m.Dispose()

	// note, a, b, task, c
	require.Equal(t, 5, m.TotalSlots())
	require.True(t, m.Collapse("note"))
	require.True(t, m.Expand("note"))

	v := values(t, p)
	assert.Equal(t, 1.0, v["slots_rebuilds_total"])
	assert.Equal(t, 1.0, v["slots_rebuild_size_count"])
	assert.Equal(t, 5.0, v["slots_rebuild_size_sum"])
	assert.Equal(t, 1.0, v["slots_incremental_updates_total{op=collapse}"])
	assert.Equal(t, 1.0, v["slots_incremental_updates_total{op=expand}"])
	assert.Equal(t, 2.0, v["slots_incremental_slots_total{op=collapse}"])
	assert.Equal(t, 2.0, v["slots_incremental_slots_total{op=expand}"])
	// task and c shift on both operations.
	assert.Equal(t, 4.0, v["slots_reindexed_total"])
}

func TestWrite(t *testing.T) {
	p := New()
	p.Collapsed(3, 1)

	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf))
	assert.Contains(t, buf.String(), "slots_incremental_updates_total{op=collapse}")
	assert.Contains(t, buf.String(), "slots_rebuilds_total")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Collapsed(1, 0)
	assert.Equal(t, 1.0, values(t, a)["slots_incremental_updates_total{op=collapse}"])
	assert.Zero(t, values(t, b)["slots_incremental_updates_total{op=collapse}"])
}
