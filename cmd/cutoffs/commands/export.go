package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportFlags outputFlags

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "The file to export to (default: output_file of the config).")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "", "csv or xlsx (default: from the output extension).")
	exportCmd.Flags().StringVar(&exportFlags.offerings, "hmt", "", "Higher Mother Tongue offerings json to add HCL/HTL/HML columns from.")
	exportCmd.Flags().StringVar(&exportFlags.coordinates, "coords", "", "School coordinates json to add Latitude/Longitude columns from.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--output <file>] [--format csv|xlsx] [--hmt <file>] [--coords <file>]",
	Short: "Exports the records saved in the database without scraping.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv()
		if err != nil {
			return err
		}
		s, err := openStore(ctx, e)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.Pull(ctx)
		if err != nil {
			return fmt.Errorf("read records: %w", err)
		}
		err = enrichRecords(e, exportFlags, records)
		if err != nil {
			return err
		}
		return writeRecords(e, exportFlags, records)
	},
}
