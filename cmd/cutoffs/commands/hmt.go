package commands

import (
	"log/slog"

	"schoolcutoffs/internal/enrich"
	"schoolcutoffs/internal/scrapers/schoolfinder"

	"github.com/spf13/cobra"
)

var hmtOut string

func init() {
	hmtCmd.Flags().StringVar(&hmtOut, "out", "", "The json file to write (default: offerings_file of the config).")
	rootCmd.AddCommand(hmtCmd)
}

var hmtCmd = &cobra.Command{
	Use:   "hmt [--out <file>]",
	Short: "Collects the schools offering each Higher Mother Tongue language from SchoolFinder.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv()
		if err != nil {
			return err
		}

		scraper := schoolfinder.NewScraper(e.config.schoolFinderOptions(), e.tel)
		offerings, err := scraper.Collect(ctx)
		if err != nil {
			return err
		}

		if e.config.Database.Configured() {
			s, err := openStore(ctx, e)
			if err != nil {
				return err
			}
			defer s.Close()
			known, err := s.Names(ctx)
			if err != nil {
				return err
			}
			var unmatched []string
			offerings, unmatched = enrich.Reconcile(offerings, known)
			if len(unmatched) > 0 {
				slog.Warn("no stored school matches", "count", len(unmatched), "schools", unmatched)
			}
		}

		out := hmtOut
		if out == "" {
			out = e.config.OfferingsFile
		}
		err = enrich.SaveOfferings(out, offerings)
		if err != nil {
			return err
		}
		slog.Info(
			"saved offerings",
			"path", out,
			"higher_chinese", len(offerings.Chinese),
			"higher_tamil", len(offerings.Tamil),
			"higher_malay", len(offerings.Malay),
		)
		return nil
	},
}
