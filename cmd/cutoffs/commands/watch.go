package commands

import (
	"context"
	"log/slog"
	"sync"

	"schoolcutoffs/internal/components/chrono"

	"github.com/spf13/cobra"
)

var watchSpec string

func init() {
	watchCmd.Flags().StringVar(&watchSpec, "cron", "0 6 * * 1", "The cron schedule to scrape on, in Asia/Singapore time.")
	rootCmd.AddCommand(watchCmd)
}

// serialRun skips a run while the previous one is still going.
type serialRun struct {
	mutex sync.Mutex
}

func (s *serialRun) Do(fn func()) bool {
	if !s.mutex.TryLock() {
		return false
	}
	defer s.mutex.Unlock()
	fn()
	return true
}

func scrapeIntoStore(ctx context.Context, e env) {
	records, err := scrape(ctx, e)
	if err != nil && len(records) == 0 {
		slog.Error("scheduled scrape failed", "err", err)
		return
	}
	if err != nil {
		slog.Warn("scheduled scrape interrupted, saving partial results", "err", err)
	}

	s, err := openStore(context.WithoutCancel(ctx), e)
	if err != nil {
		slog.Error("failed to open database", "err", err)
		return
	}
	defer s.Close()
	err = s.Push(context.WithoutCancel(ctx), records)
	if err != nil {
		slog.Error("failed to save records", "err", err)
		return
	}
	slog.Info("saved scheduled scrape", "schools", len(records))
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>]",
	Short: "Scrapes into the database on a cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv()
		if err != nil {
			return err
		}
		// fail early instead of on the first run
		s, err := openStore(ctx, e)
		if err != nil {
			return err
		}
		s.Close()

		cron := chrono.NewStandardCron(e.tel, e.clock)
		defer cron.Stop()

		runs := &serialRun{}
		err = cron.Cron(watchSpec, func() {
			ran := runs.Do(func() {
				scrapeIntoStore(ctx, e)
			})
			if !ran {
				slog.Warn("skipping scheduled scrape, the previous one is still running")
			}
		})
		if err != nil {
			return err
		}

		slog.Info("watching", "cron", watchSpec)
		<-ctx.Done()
		return nil
	},
}
