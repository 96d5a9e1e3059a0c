package domain

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenresRoundTrip(t *testing.T) {
	t.Parallel()

	genres := []string{"Action", "Adventure", "Sci-Fi"}
	joined := JoinGenres(genres)
	require.NotNil(t, joined)
	require.Equal(t, "Action, Adventure, Sci-Fi", *joined)
	require.Equal(t, genres, SplitGenres(*joined))

	require.Nil(t, JoinGenres(nil))
	require.Nil(t, JoinGenres([]string{}))
	require.Nil(t, SplitGenres("  "))
}

func TestParseStatusFilter(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]StatusFilter{"all": StatusAll, "Seen": StatusSeen, " not-seen ": StatusNotSeen} {
		got, err := ParseStatusFilter(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseStatusFilter("done")
	require.Error(t, err)
}

func TestToday(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	got := Today(time.Date(2026, time.October, 15, 23, 59, 0, 0, loc))
	require.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, loc), got)
}

func TestErrorsMatch(t *testing.T) {
	t.Parallel()

	var err error = &NotFoundError{Name: "Incepton", Suggestion: "Inception"}
	require.True(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), `did you mean "Inception"`)

	fetchErr := &FetchError{URL: "https://example.test", StatusCode: http.StatusGatewayTimeout}
	require.True(t, fetchErr.IsGatewayTimeout())
	require.False(t, (&FetchError{StatusCode: http.StatusInternalServerError}).IsGatewayTimeout())

	parseErr := &ParseError{URL: "https://example.test/tt1", Block: "genres"}
	require.Equal(t, "parse genres block of https://example.test/tt1", parseErr.Error())
}
