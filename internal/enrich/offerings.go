package enrich

import (
	"encoding/json"
	"os"
	"slices"

	"schoolcutoffs/internal/school"
)

// Offerings lists, per Higher Mother Tongue subject, the schools offering it.
type Offerings struct {
	Chinese []string `json:"higher_chinese_language"`
	Tamil   []string `json:"higher_tamil_language"`
	Malay   []string `json:"higher_malay_language"`
}

func (o *Offerings) lists() []*[]string {
	return []*[]string{&o.Chinese, &o.Tamil, &o.Malay}
}

// Names returns every distinct school name across subjects, sorted.
func (o Offerings) Names() []string {
	names := []string{}
	names = append(names, o.Chinese...)
	names = append(names, o.Tamil...)
	names = append(names, o.Malay...)
	slices.Sort(names)
	return slices.Compact(names)
}

func LoadOfferings(path string) (Offerings, error) {
	var out Offerings
	contents, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(contents, &out)
	return out, err
}

func SaveOfferings(path string, offerings Offerings) error {
	contents, err := json.MarshalIndent(offerings, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, contents)
}

// Reconcile renames every school in the offerings to its matching known name.
// Names without a match are kept as they are and returned as unmatched.
// Each subject list comes back de-duplicated and sorted.
func Reconcile(offerings Offerings, known []string) (Offerings, []string) {
	links, unmatched := MatchNames(offerings.Names(), known)
	renames := map[string]string{}
	for _, link := range links {
		renames[link.Name] = link.Known
	}

	out := offerings
	for _, list := range out.lists() {
		renamed := make([]string, 0, len(*list))
		for _, name := range *list {
			if known, ok := renames[name]; ok {
				name = known
			}
			renamed = append(renamed, name)
		}
		slices.Sort(renamed)
		*list = slices.Compact(renamed)
	}
	return out, unmatched
}

// ApplyOfferings sets the languages of every record, by exact name.
func ApplyOfferings(records []*school.Record, offerings Offerings) {
	for _, r := range records {
		r.Languages = &school.Languages{
			Chinese: slices.Contains(offerings.Chinese, r.Name),
			Tamil:   slices.Contains(offerings.Tamil, r.Name),
			Malay:   slices.Contains(offerings.Malay, r.Name),
		}
	}
}
