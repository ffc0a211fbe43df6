package enrich

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// minSimilarity is the Jaro-Winkler score a fuzzy match has to beat when
// neither normalized name contains the other.
const minSimilarity = 0.6

var nameReplacements = strings.NewReplacer(
	"secondary school", "",
	"(secondary)", "",
	" secondary", "",
	"school", "",
	"'s", "s",
)

// NormalizeName reduces a school name to the part that differs between sites.
func NormalizeName(name string) string {
	name = nameReplacements.Replace(strings.ToLower(name))
	return strings.Join(strings.Fields(name), " ")
}

// Link pairs a name from another source with a known school name.
type Link struct {
	Name        string
	Known       string
	Correlation float64
}

// MatchName finds the known name that best matches name. Exact normalized
// matches win outright, otherwise the most similar name is picked among those
// that either contain one another or score above minSimilarity.
func MatchName(name string, known []string) (Link, bool) {
	normalized := NormalizeName(name)

	var best Link
	found := false
	for _, candidate := range known {
		candidateNormalized := NormalizeName(candidate)
		if normalized == candidateNormalized {
			return Link{Name: name, Known: candidate, Correlation: 1}, true
		}

		similarity := matchr.JaroWinkler(normalized, candidateNormalized, false)
		contained := strings.Contains(candidateNormalized, normalized) ||
			strings.Contains(normalized, candidateNormalized)
		if !contained && similarity <= minSimilarity {
			continue
		}
		if similarity > best.Correlation || !found {
			best = Link{Name: name, Known: candidate, Correlation: similarity}
			found = true
		}
	}
	return best, found
}

// MatchNames links every name to a known name, names without a match are
// returned separately in their original order.
func MatchNames(names, known []string) (links []Link, unmatched []string) {
	for _, name := range names {
		link, ok := MatchName(name, known)
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		links = append(links, link)
	}
	return links, unmatched
}
