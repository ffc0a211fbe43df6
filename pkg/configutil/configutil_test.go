package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	Attempts int    `json:"attempts"`
	Output   string `json:"output"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "cutoffs.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, name, `{
		// comments are allowed
		base_url: "https://example.com",
		attempts: 3,
	}`)
	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{BaseUrl: "https://example.com", Attempts: 3}, config)

	writeFile(t, filepath.Join(dir, "cutoffs.local.json5"), `{ attempts: 5, output: "out.csv" }`)
	config, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		BaseUrl:  "https://example.com",
		Attempts: 5,
		Output:   "out.csv",
	}, config)
}

func TestMergeConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "cutoffs.json5")
	writeFile(t, name, `{ output: "data/other.csv" }`)

	config := testConfig{BaseUrl: "https://sgschooling.com", Attempts: 3, Output: "data/schools.csv"}
	require.NoError(t, MergeConfig(name, &config))
	require.Equal(t, testConfig{
		BaseUrl:  "https://sgschooling.com",
		Attempts: 3,
		Output:   "data/other.csv",
	}, config)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "cutoffs.json5")
	writeFile(t, name, `{ attempts: `)
	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	writeFile(t, filepath.Join(root, "telemetry.json5"), `{ output: "found" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, "found", config.Output)

	_, err = ReadRecursively[testConfig]("missing-config-file.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
