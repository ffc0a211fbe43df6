package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"schoolcutoffs/internal/school"
	"schoolcutoffs/internal/scrapers/sgschooling"

	"github.com/spf13/cobra"
)

var (
	scrapeFlags outputFlags
	scrapeDb    bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeFlags.output, "output", "o", "", "The file to export to (default: output_file of the config).")
	scrapeCmd.Flags().StringVar(&scrapeFlags.format, "format", "", "csv or xlsx (default: from the output extension).")
	scrapeCmd.Flags().StringVar(&scrapeFlags.offerings, "hmt", "", "Higher Mother Tongue offerings json to add HCL/HTL/HML columns from.")
	scrapeCmd.Flags().StringVar(&scrapeFlags.coordinates, "coords", "", "School coordinates json to add Latitude/Longitude columns from.")
	scrapeCmd.Flags().BoolVar(&scrapeDb, "db", false, "Also save the scraped records to the configured database.")
	rootCmd.AddCommand(scrapeCmd)
}

// scrape runs the scraper, on interruption it still returns the partial
// records along with the error.
func scrape(ctx context.Context, e env) ([]*school.Record, error) {
	scraper, err := sgschooling.NewScraper(e.config.scraperOptions(), e.clock, e.tel)
	if err != nil {
		return nil, err
	}

	t1 := time.Now()
	records, err := scraper.Run(ctx)
	slog.Info("scraping time", "seconds", time.Since(t1).Seconds(), "schools", len(records))
	return records, err
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--output <file>] [--format csv|xlsx] [--db] [--hmt <file>] [--coords <file>]",
	Short: "Scrapes every school's cut-off points and exports them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv()
		if err != nil {
			return err
		}

		records, scrapeErr := scrape(ctx, e)
		if scrapeErr != nil {
			if len(records) == 0 {
				return scrapeErr
			}
			slog.Warn("scrape interrupted, exporting partial results", "err", scrapeErr, "schools", len(records))
		}

		err = enrichRecords(e, scrapeFlags, records)
		if err != nil {
			return err
		}
		err = writeRecords(e, scrapeFlags, records)
		if err != nil {
			return errors.Join(scrapeErr, err)
		}

		if scrapeDb {
			// the signal context may already be cancelled
			s, err := openStore(context.WithoutCancel(ctx), e)
			if err != nil {
				return errors.Join(scrapeErr, err)
			}
			defer s.Close()
			err = s.Push(context.WithoutCancel(ctx), records)
			if err != nil {
				return errors.Join(scrapeErr, fmt.Errorf("save records: %w", err))
			}
		}
		return scrapeErr
	},
}
