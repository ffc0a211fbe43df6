package enrich

import (
	"path/filepath"
	"testing"
	"time"

	"schoolcutoffs/internal/school"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var known = []string{
	"Bukit Panjang Government High School",
	"Bukit Batok Secondary School",
	"Bedok Green Secondary School",
	"Raffles Institution",
	"St. Joseph's Institution",
	"Nan Hua High School",
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "Bedok Green Secondary School", expected: "bedok green"},
		{input: "St. Joseph's Institution", expected: "st. josephs institution"},
		{input: "Anglo-Chinese School (Barker Road)", expected: "anglo-chinese (barker road)"},
		{input: "Catholic High School (Secondary)", expected: "catholic high"},
		{input: "  Nan   Hua High ", expected: "nan hua high"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, NormalizeName(test.input), "input %q", test.input)
	}
}

func TestMatchName(t *testing.T) {
	link, ok := MatchName("NAN HUA HIGH SCHOOL", known)
	require.True(t, ok)
	require.Equal(t, Link{Name: "NAN HUA HIGH SCHOOL", Known: "Nan Hua High School", Correlation: 1}, link)

	link, ok = MatchName("Bukit Panjang Govt. High School", known)
	require.True(t, ok)
	require.Equal(t, "Bukit Panjang Government High School", link.Known)
	require.Greater(t, link.Correlation, minSimilarity)

	link, ok = MatchName("Raffles", known)
	require.True(t, ok)
	require.Equal(t, "Raffles Institution", link.Known)

	_, ok = MatchName("Xyzzy", known)
	require.False(t, ok)
}

func TestReconcile(t *testing.T) {
	offerings := Offerings{
		Chinese: []string{"NAN HUA HIGH SCHOOL", "Raffles Institution", "Xyzzy"},
		Tamil:   []string{"Bukit Panjang Govt. High School"},
		Malay:   []string{"Bedok Green Secondary School", "BEDOK GREEN SECONDARY SCHOOL"},
	}

	reconciled, unmatched := Reconcile(offerings, known)
	expected := Offerings{
		Chinese: []string{"Nan Hua High School", "Raffles Institution", "Xyzzy"},
		Tamil:   []string{"Bukit Panjang Government High School"},
		Malay:   []string{"Bedok Green Secondary School"},
	}
	if diff := cmp.Diff(expected, reconciled); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []string{"Xyzzy"}, unmatched)
	// the input is left untouched
	require.Equal(t, "NAN HUA HIGH SCHOOL", offerings.Chinese[0])
}

func TestOfferingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "higher_mother_tongue.json")
	offerings := Offerings{
		Chinese: []string{"Nan Hua High School"},
		Tamil:   []string{},
		Malay:   []string{"Bedok Green Secondary School"},
	}
	require.NoError(t, SaveOfferings(path, offerings))
	loaded, err := LoadOfferings(path)
	require.NoError(t, err)
	require.Equal(t, offerings, loaded)
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []*school.Record{
		school.NewRecord("Nan Hua High School", "", now),
		school.NewRecord("Raffles Institution", "", now),
	}

	ApplyOfferings(records, Offerings{
		Chinese: []string{"Nan Hua High School"},
		Malay:   []string{"Nan Hua High School"},
	})
	require.Equal(t, &school.Languages{Chinese: true, Malay: true}, records[0].Languages)
	require.Equal(t, &school.Languages{}, records[1].Languages)

	path := filepath.Join(t.TempDir(), "coordinates.json")
	require.NoError(t, SaveCoordinates(path, Coordinates{
		"Nan Hua High School": {Latitude: 1.3196, Longitude: 103.7655},
	}))
	coords, err := LoadCoordinates(path)
	require.NoError(t, err)

	missing := ApplyCoordinates(records, coords)
	require.Equal(t, []string{"Raffles Institution"}, missing)
	require.Equal(t, &school.Coordinates{Latitude: 1.3196, Longitude: 103.7655}, records[0].Coordinates)
	require.Nil(t, records[1].Coordinates)
}
