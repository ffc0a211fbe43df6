package schoolfinder

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	require.Equal(
		t,
		"https://www.moe.gov.sg/schoolfinder?journey=Secondary%20school&q=*"+
			"&fq=school_journey_ss:%22Secondary%20school%22"+
			"&fq=subjects_offered_ss:%28%22Higher%20Chinese%20Language%22%29"+
			"&sort=slug_s%20asc",
		BuildURL(DefaultBaseUrl, HigherChinese),
	)
}

func TestParseTotal(t *testing.T) {
	total, err := parseTotal("Filters Showing 43 Secondary schools Sort by")
	require.NoError(t, err)
	require.Equal(t, 43, total)
	require.Equal(t, 3, pages(43))
	require.Equal(t, 1, pages(20))

	_, err = parseTotal("No results")
	require.Error(t, err)
}

func TestExtractNames(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<a href="/schoolfinder/schooldetail?schoolname=nan-hua-high-school"><p>NAN HUA HIGH SCHOOL</p></a>
			<a href="/schoolfinder/schooldetail?schoolname=dunman-high-school"><span>icon</span><p> DUNMAN
				HIGH SCHOOL </p></a>
			<a href="/schoolfinder/schooldetail?schoolname=x"><p>Add school to compare</p></a>
			<a href="/schoolfinder/schooldetail?schoolname=y">no name</a>
			<a href="/elsewhere"><p>Not A School</p></a>
		</div>
	`))
	require.NoError(t, err)
	require.Equal(t, []string{"NAN HUA HIGH SCHOOL", "DUNMAN HIGH SCHOOL"}, extractNames(doc))
}

func TestDedupe(t *testing.T) {
	require.Equal(t, []string{"B", "A", "C"}, dedupe([]string{"B", "A", "B", "C", "A"}))
}
