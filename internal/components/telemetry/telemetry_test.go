package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := &Recorder{}
	tel := NewScopedAPI("sgschooling", recorder)

	tel.ReportBroken("client.get-listing", "timeout")
	tel.ReportWarning("scraper.detail", "Bishan Park Secondary School")
	tel.ReportCount("scraper.schools", 3)

	require.Equal(t, []Report{{
		Kind:   "broken",
		Id:     "sgschooling: client.get-listing",
		Params: []any{"timeout"},
	}}, recorder.Reports("broken"))
	require.Len(t, recorder.Reports("warning"), 1)
	require.Equal(t, int64(3), recorder.Count("sgschooling: scraper.schools"))
}

func TestNestedScopes(t *testing.T) {
	recorder := &Recorder{}
	tel := NewScopedAPI("outer", NewScopedAPI("inner", recorder))
	tel.ReportWarning("x")
	require.Equal(t, "inner: outer: x", recorder.Reports("warning")[0].Id)
}
