package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"schoolcutoffs/internal/enrich"
	"schoolcutoffs/internal/school"
	"schoolcutoffs/internal/store"
)

// outputFlags are shared by every command that writes records out.
type outputFlags struct {
	output      string
	format      string
	offerings   string
	coordinates string
}

func (f *outputFlags) resolveFormat(path string) string {
	if f.format != "" {
		return strings.ToLower(f.format)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}

// enrichRecords applies the offerings and coordinates files when they exist,
// an explicitly requested file that is missing is an error.
func enrichRecords(e env, f outputFlags, records []*school.Record) error {
	offeringsPath, offeringsRequired := f.offerings, f.offerings != ""
	if !offeringsRequired {
		offeringsPath = e.config.OfferingsFile
	}
	offerings, err := enrich.LoadOfferings(offeringsPath)
	switch {
	case err == nil:
		enrich.ApplyOfferings(records, offerings)
	case errors.Is(err, os.ErrNotExist) && !offeringsRequired:
	default:
		return fmt.Errorf("load offerings: %w", err)
	}

	coordinatesPath, coordinatesRequired := f.coordinates, f.coordinates != ""
	if !coordinatesRequired {
		coordinatesPath = e.config.CoordinatesFile
	}
	coords, err := enrich.LoadCoordinates(coordinatesPath)
	switch {
	case err == nil:
		missing := enrich.ApplyCoordinates(records, coords)
		if len(missing) > 0 {
			slog.Warn("schools without coordinates", "count", len(missing), "schools", missing)
		}
	case errors.Is(err, os.ErrNotExist) && !coordinatesRequired:
	default:
		return fmt.Errorf("load coordinates: %w", err)
	}
	return nil
}

func writeRecords(e env, f outputFlags, records []*school.Record) error {
	path := f.output
	if path == "" {
		path = e.config.OutputFile
	}
	layout := school.LayoutFor(e.config.years(), records)

	var err error
	switch f.resolveFormat(path) {
	case "csv":
		err = school.WriteCSV(path, layout, records)
	case "xlsx":
		err = school.WriteXLSX(path, layout, records)
	default:
		return fmt.Errorf("unknown output format %q", f.format)
	}
	if err != nil {
		return err
	}
	slog.Info("exported schools", "count", len(records), "path", path)
	return nil
}

func openStore(ctx context.Context, e env) (store.Store, error) {
	if !e.config.Database.Configured() {
		return store.Store{}, fmt.Errorf("no database configured, set database in the config or DATABASE_URL")
	}
	return store.Open(ctx, e.config.Database)
}
