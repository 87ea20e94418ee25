package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStatsCmd(app **App) *cobra.Command {
	var (
		flags  viewFlags
		cycles int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Exercise a projection and print its metrics",
		Long: `Build a projection, collapse and expand every top-level group the given
number of times and print the projection counters and timings.`,
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

			var ids []string
			for _, n := range p.ctrl.Root().Children() {
				ids = append(ids, n.ID())
			}
			for i := 0; i < cycles; i++ {
				for _, id := range ids {
					p.slots.ToggleCollapse(id)
				}
				for _, id := range ids {
					p.slots.ToggleCollapse(id)
				}
			}
			p.slots.Rebuild()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records:        %d\n", p.ctrl.Len())
			fmt.Fprintf(out, "groups:         %d\n", len(ids))
			fmt.Fprintf(out, "slots:          %d\n", p.slots.TotalSlots())
			fmt.Fprintf(out, "unique visible: %d\n", p.slots.UniqueItemCount())
			fmt.Fprintf(out, "version:        %d\n\n", p.slots.Version())
			return p.metrics.Write(out)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&cycles, "cycles", 1, "Collapse/expand cycles over the top-level groups")
	return cmd
}
