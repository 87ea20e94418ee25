package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-slots/pkg/dataset"
	"github.com/mattsolo1/grove-slots/pkg/models"
)

func NewImportCmd(app **App) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "import <file-or-dir>...",
		Short: "Import records into the store",
		Long: `Import records from YAML datasets or directories of markdown notes
into the record store. Records with an existing id are replaced.

With --export, the store is written to a YAML dataset instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if export != "" {
				records, err := st.All()
				if err != nil {
					return err
				}
				if err := dataset.Save(export, records); err != nil {
					return fmt.Errorf("failed to export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), export)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("nothing to import")
			}
			var all []models.Record
			for _, arg := range args {
				records, err := a.loadRecords(arg)
				if err != nil {
					return err
				}
				a.Log.WithFields(logrus.Fields{"source": arg, "records": len(records)}).Info("read records")
				all = append(all, records...)
			}
			if err := st.Put(all...); err != nil {
				return fmt.Errorf("failed to store records: %w", err)
			}
			total, err := st.Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records (%d in store)\n", len(all), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Write the store to this YAML file instead of importing")
	return cmd
}
