package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-slots/internal/render"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

// slotJSON is the --json shape of one slot.
type slotJSON struct {
	Index      int              `json:"index"`
	Depth      int              `json:"depth"`
	Header     bool             `json:"header"`
	ID         string           `json:"id,omitempty"`
	Label      string           `json:"label,omitempty"`
	Option     string           `json:"option,omitempty"`
	Collapsed  bool             `json:"collapsed,omitempty"`
	Items      int              `json:"items,omitempty"`
	Total      int              `json:"total,omitempty"`
	Aggregates slots.Aggregates `json:"aggregates,omitempty"`
	Record     *models.Record   `json:"record,omitempty"`
}

func NewShowCmd(app **App) *cobra.Command {
	var (
		flags    viewFlags
		jsonOut  bool
		start    int
		limit    int
		collapse []string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the grouped record projection",
		Long: `Group records, apply the filter and print the visible slots.

Examples:
  slots show -f records.yaml                 # path tree
  slots show -f records.yaml -g kind,tag     # kind groups with tag subgroups
  slots show -g tag --filter "#urgent"       # from the store, filtered
  slots show -g kind --collapse-level 0      # only top-level headers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			f := flags.merge(cmd, a.Config)

			records, err := a.loadRecords(f.file)
			if err != nil {
				return err
			}
			p, err := a.newProjection(records, f)
			if err != nil {
				return err
			}
			defer p.Close()

			for _, id := range collapse {
				if !p.slots.Collapse(id) {
					a.Log.WithField("group", id).Warn("no such group or already collapsed")
				}
			}

			if limit <= 0 {
				limit = p.slots.TotalSlots()
			}
			if jsonOut {
				return writeSlotsJSON(cmd.OutOrStdout(), p.slots.SlotRange(start, limit))
			}
			return writeSlots(cmd.OutOrStdout(), p.slots, start, limit)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output slots as JSON")
	cmd.Flags().IntVar(&start, "start", 0, "First slot to print")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of slots to print (0 for all)")
	cmd.Flags().StringSliceVar(&collapse, "collapse", nil, "Group ids to collapse before printing")
	return cmd
}

func writeSlots(w io.Writer, m *slots.Manager[string, models.Record], start, limit int) error {
	prefixes := render.NewPrefixer(m)
	for _, s := range m.SlotRange(start, limit) {
		if _, err := fmt.Fprintln(w, render.Line(s, prefixes.Prefix(s.Index()))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d slots, %d records shown\n", m.TotalSlots(), m.UniqueItemCount())
	return err
}

func writeSlotsJSON(w io.Writer, view []slots.Slot) error {
	out := make([]slotJSON, 0, len(view))
	for _, s := range view {
		js := slotJSON{Index: s.Index(), Depth: s.Depth(), Header: s.IsHeader()}
		switch v := s.(type) {
		case *render.Header:
			js.ID = v.ID()
			js.Label = render.Label(v)
			js.Option = v.GroupOptionID
			js.Collapsed = v.IsCollapsed
			js.Items = v.ItemCount
			js.Total = v.TotalCount
			js.Aggregates = v.Aggregates
		case *slots.ItemSlot[string, models.Record]:
			r := v.Item
			js.ID = v.Key
			js.Record = &r
		}
		out = append(out, js)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
