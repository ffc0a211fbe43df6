package enrich

import (
	"encoding/json"
	"os"
	"path/filepath"

	"schoolcutoffs/internal/school"
)

// Coordinates caches the geocoded position of each school by name.
type Coordinates map[string]school.Coordinates

func LoadCoordinates(path string) (Coordinates, error) {
	out := Coordinates{}
	contents, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(contents, &out)
	return out, err
}

func SaveCoordinates(path string, coords Coordinates) error {
	contents, err := json.MarshalIndent(coords, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, contents)
}

// ApplyCoordinates sets the coordinates of every cached record and returns
// the names of the records that are not in the cache.
func ApplyCoordinates(records []*school.Record, coords Coordinates) []string {
	var missing []string
	for _, r := range records {
		c, ok := coords[r.Name]
		if !ok {
			missing = append(missing, r.Name)
			continue
		}
		r.Coordinates = &c
	}
	return missing
}

func writeFile(path string, contents []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(contents, '\n'), 0644)
}
