package commands

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"schoolcutoffs/internal/cutoff"
	"schoolcutoffs/internal/school"

	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "cutoffs.json5"), lookupFrom(nil))
	require.NoError(t, err)

	require.Equal(t, "https://sgschooling.com", config.BaseUrl)
	require.Equal(t, "/secondary/cop/all", config.ListingPath)
	require.Equal(t, "Mozilla/5.0 (Educational Research Bot)", config.UserAgent)
	require.Equal(t, "data/schools.csv", config.OutputFile)
	require.Equal(t, []int{2025, 2024, 2023}, config.years())

	opts := config.scraperOptions()
	require.Equal(t, 2*time.Second, opts.RequestDelay)
	require.Equal(t, 3, opts.MaxRetries)
	require.Equal(t, 30*time.Second, opts.Timeout)
	require.True(t, config.schoolFinderOptions().Headless)
	require.Equal(t, 300*time.Millisecond, config.oneMapOptions().RequestDelay)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutoffs.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		request_delay: 5,
		output_file: "out/file.csv",
		history_years: [2024],
		database: { file: "data/cutoffs.db" },
	}`), 0600))

	config, err := LoadConfig(path, lookupFrom(map[string]string{
		"REQUEST_DELAY": "0.5",
		"MAX_RETRIES":   "5",
		"TIMEOUT":       "10",
		"DATABASE_URL":  "postgres://localhost/cutoffs",
	}))
	require.NoError(t, err)

	require.Equal(t, "out/file.csv", config.OutputFile)
	require.Equal(t, []int{2025, 2024}, config.years())
	require.Equal(t, "data/cutoffs.db", config.Database.File)
	require.Equal(t, "postgres://localhost/cutoffs", config.Database.Url)

	opts := config.scraperOptions()
	require.Equal(t, 500*time.Millisecond, opts.RequestDelay)
	require.Equal(t, 5, opts.MaxRetries)
	require.Equal(t, 10*time.Second, opts.Timeout)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "cutoffs.json5"), lookupFrom(map[string]string{
		"MAX_RETRIES": "many",
	}))
	require.ErrorContains(t, err, "MAX_RETRIES")
}

func TestResolveFormat(t *testing.T) {
	require.Equal(t, "xlsx", (&outputFlags{}).resolveFormat("data/schools.XLSX"))
	require.Equal(t, "csv", (&outputFlags{}).resolveFormat("data/schools.csv"))
	require.Equal(t, "xlsx", (&outputFlags{format: "XLSX"}).resolveFormat("data/schools.csv"))
}

func TestCutoffTable(t *testing.T) {
	r := school.NewRecord("Raffles Institution", "", time.Now())
	r.Town = "Bishan"
	school.Assemble(r, 2025, map[school.Track]string{
		school.TrackIP:  "6",
		school.TrackPG3: "6M8M",
	}, cutoff.Decoder{})
	other := school.NewRecord("Bedok Green Secondary School", "", time.Now())

	rendered := cutoffTable([]*school.Record{r, other}, 2025, "raffles").Render()
	require.Contains(t, rendered, "Raffles Institution")
	require.Contains(t, rendered, "6M / 8M")
	require.NotContains(t, rendered, "Bedok Green")
	require.True(t, strings.Contains(rendered, "1 SCHOOLS") || strings.Contains(rendered, "1 schools"))
}

func TestSerialRun(t *testing.T) {
	runs := &serialRun{}
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runs.Do(func() {
			close(started)
			<-release
		})
	}()

	<-started
	require.False(t, runs.Do(func() {}))
	close(release)
	wg.Wait()
	require.True(t, runs.Do(func() {}))
}
