package commands

import (
	"errors"
	"log/slog"
	"os"

	"schoolcutoffs/internal/enrich"
	"schoolcutoffs/internal/scrapers/onemap"

	"github.com/spf13/cobra"
)

var geocodeOut string

func init() {
	geocodeCmd.Flags().StringVar(&geocodeOut, "out", "", "The coordinate cache to update (default: coordinates_file of the config).")
	rootCmd.AddCommand(geocodeCmd)
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode [--out <file>]",
	Short: "Geocodes the address of every stored school that is not cached yet.",
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

		out := geocodeOut
		if out == "" {
			out = e.config.CoordinatesFile
		}
		cache, err := enrich.LoadCoordinates(out)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		geocoder := onemap.NewGeocoder(e.config.oneMapOptions(), e.tel)
		fillErr := geocoder.Fill(ctx, records, cache)

		// whatever was geocoded before an interruption is kept
		err = enrich.SaveCoordinates(out, cache)
		if err != nil {
			return errors.Join(fillErr, err)
		}
		slog.Info("saved coordinates", "path", out, "schools", len(cache))
		return fillErr
	},
}
