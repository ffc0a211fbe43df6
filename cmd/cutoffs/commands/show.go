package commands

import (
	"fmt"
	"strings"

	"schoolcutoffs/internal/school"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showYear   int
	showFilter string
)

func init() {
	showCmd.Flags().IntVar(&showYear, "year", 0, "The year to show (default: listing_year of the config).")
	showCmd.Flags().StringVar(&showFilter, "filter", "", "Only show schools whose name contains this text.")
	rootCmd.AddCommand(showCmd)
}

func cutoffTable(records []*school.Record, year int, filter string) table.Writer {
	t := newTable()
	header := table.Row{"School", "Town"}
	for _, track := range school.Tracks {
		header = append(header, string(track))
	}
	t.AppendHeader(header)

	shown := 0
	for _, r := range records {
		if filter != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter)) {
			continue
		}
		row := table.Row{r.Name, r.Town}
		for _, track := range school.Tracks {
			row = append(row, school.Summary(r.Cutoff(year, track)))
		}
		t.AppendRow(row)
		shown++
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d schools", shown), year})
	return t
}

var showCmd = &cobra.Command{
	Use:   "show [--year <year>] [--filter <text>]",
	Short: "Shows the cut-off points saved in the database as a table.",
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
			return err
		}
		year := showYear
		if year == 0 {
			year = e.config.ListingYear
		}
		cutoffTable(records, year, showFilter).Render()
		return nil
	},
}
