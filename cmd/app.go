package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-slots/cmd/config"
	"github.com/mattsolo1/grove-slots/internal/metrics"
	"github.com/mattsolo1/grove-slots/pkg/aggregate"
	"github.com/mattsolo1/grove-slots/pkg/controller"
	"github.com/mattsolo1/grove-slots/pkg/dataset"
	"github.com/mattsolo1/grove-slots/pkg/filter"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
	"github.com/mattsolo1/grove-slots/pkg/store"
)

// App carries what every command needs once flags and config are resolved.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
}

// viewFlags are the flags shared by commands that build a projection.
type viewFlags struct {
	file          string
	groupBy       string
	filter        string
	onDemand      bool
	collapseLevel int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read records from a YAML dataset or a directory of markdown notes instead of the store")
	cmd.Flags().StringVarP(&f.groupBy, "group-by", "g", "", "Comma separated grouping rules (kind, tag, month, dir); empty shows the path tree")
	cmd.Flags().StringVar(&f.filter, "filter", "", "Filter query: words match title and path, #tag, kind:x")
	cmd.Flags().BoolVar(&f.onDemand, "on-demand", false, "Build slots on access instead of keeping them in memory")
	cmd.Flags().IntVar(&f.collapseLevel, "collapse-level", -1, "Collapse groups at or below this depth")
}

// merge fills unset flags from the configuration.
func (f viewFlags) merge(cmd *cobra.Command, cfg *config.Config) viewFlags {
	if !cmd.Flags().Changed("group-by") {
		f.groupBy = cfg.GroupBy
	}
	if !cmd.Flags().Changed("on-demand") {
		f.onDemand = cfg.OnDemand
	}
	if !cmd.Flags().Changed("collapse-level") {
		f.collapseLevel = cfg.CollapseLevel
	}
	return f
}

// openStore opens the record store in the data directory.
func (a *App) openStore() (*store.Store, error) {
	if err := os.MkdirAll(a.Config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.Open(a.Config.DBPath())
}

// loadRecords reads records from file (a dataset or a notes directory) or,
// when file is empty, from the store.
func (a *App) loadRecords(file string) ([]models.Record, error) {
	if file == "" {
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.All()
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return dataset.LoadNotes(file)
	}
	return dataset.Load(file)
}

// projection ties a controller, its aggregates and the slot manager
// together.
type projection struct {
	ctrl    *controller.Controller
	aggs    *aggregate.Set
	metrics *metrics.Projection
	slots   *slots.Manager[string, models.Record]
}

func (a *App) newProjection(records []models.Record, f viewFlags) (*projection, error) {
	rules, err := grouping.Lookup(f.groupBy)
	if err != nil {
		return nil, err
	}
	ctrlOpts := []controller.Option{controller.WithLogger(a.Log)}
	if len(rules) == 0 {
		ctrlOpts = append(ctrlOpts, controller.WithNatural())
	} else {
		ctrlOpts = append(ctrlOpts, controller.WithRules(rules...))
	}
	ctrl := controller.New(ctrlOpts...)
	ctrl.SetRecords(records)
	ctrl.SetFilter(filter.Parse(f.filter))

	aggs, err := aggregate.NewSet(a.Config.Aggregates...)
	if err != nil {
		return nil, err
	}

	p := &projection{ctrl: ctrl, aggs: aggs, metrics: metrics.New()}
	opts := []slots.Option{
		slots.WithLogger(a.Log),
		slots.WithInstrumentation(p.metrics),
		slots.WithAggregator[models.Record](aggs),
	}
	if f.onDemand {
		opts = append(opts, slots.WithOnDemand())
	}
	p.slots = slots.New[string, models.Record](ctrl, opts...)
	if f.collapseLevel >= 0 {
		p.slots.CollapseToLevel(f.collapseLevel)
	}
	return p, nil
}

func (p *projection) Close() {
	p.slots.Dispose()
}
