package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName turns "dir/cutoffs.json5" into "dir/cutoffs.local.json5".
func localName(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

func readLayer[T any](path string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads a json5 configuration file, `name` should come with a file extension.
// the following files are merged, where a higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	err := MergeConfig(name, &out)
	return out, err
}

// MergeConfig is ReadConfig, but it merges the files on top of the values
// already held by `out`, fields left empty in the files keep their value.
func MergeConfig[T any](name string, out *T) error {
	found := false
	for _, path := range []string{name, localName(name)} {
		layer, ok, err := readLayer[T](path)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		err = mergo.Merge(out, layer, mergo.WithOverride)
		if err != nil {
			return err
		}
		if path != name {
			slog.Info("merging config with local overrides", "local", path)
		}
		found = true
	}
	if !found {
		return os.ErrNotExist
	}
	return nil
}

// ReadRecursively is ReadConfig, but it goes up the filesystem from the
// working directory until the root to find a file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
