package school

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"schoolcutoffs/internal/cutoff"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var scrapedAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("SGT", 8*60*60))

func testRecord() *Record {
	r := NewRecord("Bukit Panjang Government High School", "https://sgschooling.com/school/bukit-panjang-government-high-school", scrapedAt)
	r.Town = "Choa Chu Kang"
	Assemble(r, 2025, map[Track]string{
		TrackIP:  "-",
		TrackPG3: "6M 8M",
		TrackPG2: "713",
		TrackPG1: "21",
	}, cutoff.Decoder{})
	return r
}

func TestAssemble(t *testing.T) {
	r := testRecord()

	require.Equal(t, cutoff.NewValue("6", cutoff.GradeMerit), r.Value(2025, TrackPG3, cutoff.PathwayMain))
	require.Equal(t, cutoff.NewValue("8", cutoff.GradeMerit), r.Value(2025, TrackPG3, cutoff.PathwayAffiliated))
	require.Equal(t, cutoff.NewValue("13", cutoff.GradeNone), r.Value(2025, TrackPG2, cutoff.PathwayAffiliated))
	require.False(t, r.Value(2025, TrackIP, cutoff.PathwayMain).Present())
	require.True(t, r.HasCutoffs(2025))
	require.False(t, r.HasCutoffs(2024))

	degraded := Assemble(r, 2024, map[Track]string{
		TrackIP:  "N.A.",
		TrackPG3: "5 - 910 - 22",
	}, cutoff.Decoder{CombinedRanges: true})
	require.Equal(t, []Track{TrackIP}, degraded)
	require.Equal(t, cutoff.NewValue("9", cutoff.GradeNone), r.Value(2024, TrackPG3, cutoff.PathwayMain))
	require.Equal(t, cutoff.NewValue("22", cutoff.GradeNone), r.Value(2024, TrackPG3, cutoff.PathwayAffiliated))
	// untouched tracks stay absent
	require.False(t, r.Value(2024, TrackPG1, cutoff.PathwayMain).Present())

	require.Equal(t, []int{2025, 2024}, r.Years())
}

func TestHeader(t *testing.T) {
	header := Layout{Years: []int{2024, 2025}}.Header()
	require.Len(t, header, 3+2*4*4+2)
	require.Equal(t, []string{"School Name", "Town", "Address"}, header[:3])
	require.Equal(t, []string{
		"2025_IP", "2025_IP_HCL", "2025_IP_Aff", "2025_IP_Aff_HCL",
		"2025_PG3", "2025_PG3_HCL", "2025_PG3_Aff", "2025_PG3_Aff_HCL",
	}, header[3:11])
	require.Equal(t, "2024_IP", header[19])
	require.Equal(t, []string{"Detail URL", "Scrape Timestamp"}, header[len(header)-2:])

	header = Layout{Years: []int{2025}, Languages: true, Coordinates: true}.Header()
	require.Equal(t, []string{
		"HCL", "HTL", "HML", "Latitude", "Longitude", "Detail URL", "Scrape Timestamp",
	}, header[len(header)-7:])
}

func TestRow(t *testing.T) {
	r := testRecord()
	row := Layout{Years: []int{2025}}.Row(r)

	require.Equal(t, []string{
		"Bukit Panjang Government High School", "Choa Chu Kang", "N/A",
		"-", "-", "-", "-",
		"6", "M", "8", "M",
		"7", "-", "13", "-",
		"21", "-", "-", "-",
		"https://sgschooling.com/school/bukit-panjang-government-high-school",
		"2025-03-01T09:30:00+08:00",
	}, row)

	r.Languages = &Languages{Chinese: true}
	r.Coordinates = &Coordinates{Latitude: 1.3801, Longitude: 103.7622}
	layout := LayoutFor([]int{2025}, []*Record{r})
	require.True(t, layout.Languages)
	require.True(t, layout.Coordinates)
	row = layout.Row(r)
	require.Equal(t, []string{"Y", "-", "-", "1.3801", "103.7622"}, row[19:24])

	other := NewRecord("Other", "", time.Time{})
	row = layout.Row(other)
	require.Equal(t, []string{"-", "-", "-", "", "", "", ""}, row[19:])
}

func TestSummary(t *testing.T) {
	require.Equal(t, "6M / 8M", Summary(cutoff.Decode("6M8M")))
	require.Equal(t, "21", Summary(cutoff.Decode("21")))
	require.Equal(t, "-", Summary(cutoff.Decode("--")))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schools.csv")
	layout := Layout{Years: []int{2025, 2024, 2023}}

	require.ErrorIs(t, WriteCSV(path, layout, nil), ErrNoRecords)

	require.NoError(t, WriteCSV(path, layout, []*Record{testRecord()}))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(contents)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, layout.Header(), rows[0])
	require.Equal(t, layout.Row(testRecord()), rows[1])
}

func TestEncodeXLSX(t *testing.T) {
	layout := Layout{Years: []int{2025}}
	var buffer bytes.Buffer
	require.NoError(t, EncodeXLSX(&buffer, layout, []*Record{testRecord()}))

	f, err := excelize.OpenReader(&buffer)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, layout.Header(), rows[0])
	require.Equal(t, "6", rows[1][7])
}
