package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/infrastructure/storage"
	"MovieCatalog/internal/infrastructure/terminal"
	"MovieCatalog/internal/render"
)

var (
	addedOn   = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	watchedOn = time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)
	curateNow = time.Date(2026, time.October, 15, 21, 5, 0, 0, time.UTC)
	curateDay = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
)

func movie(name, id string, rating *string, genres ...string) domain.Movie {
	return domain.Movie{
		Name:     name,
		Link:     "https://www.imdb.com/title/" + id,
		Rating:   rating,
		Genres:   genres,
		Director: "Director of " + name,
		Language: "English",
		AddedOn:  addedOn,
	}
}

func seededCatalog(t *testing.T, movies ...domain.Movie) *storage.SQLiteCatalog {
	t.Helper()

	catalog := openCatalog(t, filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, catalog.Rebuild(context.Background(), movies))
	return catalog
}

func newTestCurator(catalog *storage.SQLiteCatalog, prompter *terminal.Scripted, out io.Writer) *Curator {
	return NewCurator(CuratorDeps{
		Catalog:  catalog,
		Prompter: prompter,
		Out:      out,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Now:      func() time.Time { return curateNow },
	})
}

func TestChooseMovieSingleCandidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime", "Drama"))
	prompter := terminal.NewScripted("drama", "y")
	var out bytes.Buffer

	picked, err := newTestCurator(catalog, prompter, &out).ChooseMovie(ctx, domain.StatusNotSeen)
	require.NoError(t, err)
	require.Equal(t, "Heat", picked.Name)
	require.NotNil(t, picked.SeenOn)
	require.True(t, picked.SeenOn.Equal(curateDay))
	require.Zero(t, prompter.Remaining())
	require.Equal(t, "Pick a genre (Crime, Drama, Any)", prompter.Questions[0])
	require.Contains(t, out.String(), "Director of Heat")

	stored, err := catalog.FindByName(ctx, "Heat")
	require.NoError(t, err)
	require.True(t, stored.Seen())
}

func TestChooseMovieRejectReturnsToGenres(t *testing.T) {
	t.Parallel()

	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))
	prompter := terminal.NewScripted("Any", "n", "crime", "no", "ANY", "yes")

	picked, err := newTestCurator(catalog, prompter, io.Discard).ChooseMovie(context.Background(), domain.StatusAll)
	require.NoError(t, err)
	require.Equal(t, "Heat", picked.Name)
	require.Len(t, prompter.Questions, 6)
	require.Zero(t, prompter.Remaining())
}

func TestChooseMovieUnknownGenreReprompts(t *testing.T) {
	t.Parallel()

	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))
	prompter := terminal.NewScripted("Western", "crime", "y")
	var out bytes.Buffer

	_, err := newTestCurator(catalog, prompter, &out).ChooseMovie(context.Background(), domain.StatusAll)
	require.NoError(t, err)
	require.Contains(t, out.String(), `Unknown genre "Western".`)
	require.Len(t, prompter.Questions, 3)
}

func TestChooseMovieEmptyPool(t *testing.T) {
	t.Parallel()

	// Only movies with both a rating and genres are offered.
	catalog := seededCatalog(t,
		movie("Unrated", "tt0000010", nil, "Drama"),
		movie("Genreless", "tt0000011", strPtr("6.1")),
	)
	prompter := terminal.NewScripted("any", "y")

	_, err := newTestCurator(catalog, prompter, io.Discard).ChooseMovie(context.Background(), domain.StatusAll)
	require.ErrorIs(t, err, domain.ErrEmptyPool)
	require.Empty(t, prompter.Questions)
}

func TestChooseMovieStatusFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seen := movie("Alien", "tt0078748", strPtr("8.5"), "Horror")
	seen.SeenOn = &watchedOn
	catalog := seededCatalog(t, seen, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))

	_, err := newTestCurator(catalog, terminal.NewScripted(), io.Discard).ChooseMovie(ctx, domain.StatusSeen)
	require.ErrorIs(t, err, io.EOF)

	prompter := terminal.NewScripted("any", "y")
	picked, err := newTestCurator(catalog, prompter, io.Discard).ChooseMovie(ctx, domain.StatusSeen)
	require.NoError(t, err)
	require.Equal(t, "Alien", picked.Name)
	require.Equal(t, "Pick a genre (Horror, Any)", prompter.Questions[0])
	// Accepting replaces the old date without asking again.
	require.True(t, picked.SeenOn.Equal(curateDay))
}

func TestChooseMovieEndOfInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))

	_, err := newTestCurator(catalog, terminal.NewScripted("crime"), io.Discard).ChooseMovie(ctx, domain.StatusAll)
	require.ErrorIs(t, err, io.EOF)

	stored, err := catalog.FindByName(ctx, "Heat")
	require.NoError(t, err)
	require.False(t, stored.Seen())
}

func TestChooseMovieHonoursCancellation(t *testing.T) {
	t.Parallel()

	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCurator(catalog, terminal.NewScripted("any", "y"), io.Discard).ChooseMovie(ctx, domain.StatusAll)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCandidatesForAnyCountsEachMovieOnce(t *testing.T) {
	t.Parallel()

	pool := []domain.Movie{
		movie("Everything Everywhere", "tt6710474", strPtr("7.8"), "Action", "Adventure", "Comedy", "Drama", "Fantasy"),
		movie("Whiplash", "tt2582802", strPtr("8.5"), "Drama"),
	}
	require.Equal(t, []string{"Action", "Adventure", "Comedy", "Drama", "Fantasy"}, distinctGenres(pool))
	require.Len(t, candidatesFor(pool, AnyGenre), 2)
	require.Len(t, candidatesFor(pool, "Drama"), 2)
	require.Len(t, candidatesFor(pool, "Comedy"), 1)

	rng := rand.New(rand.NewPCG(7, 11))
	counts := map[string]int{}
	candidates := candidatesFor(pool, AnyGenre)
	for i := 0; i < 4000; i++ {
		counts[candidates[rng.IntN(len(candidates))].Name]++
	}
	require.InDelta(t, 2000, counts["Everything Everywhere"], 200)
	require.InDelta(t, 2000, counts["Whiplash"], 200)
}

func TestUpdateSeen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))
	prompter := terminal.NewScripted()
	var out bytes.Buffer

	result, err := newTestCurator(catalog, prompter, &out).UpdateSeen(ctx, "Heat")
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.Nil(t, result.Previous)
	require.Empty(t, prompter.Questions)
	require.Contains(t, out.String(), "2026-10-15")
}

func TestUpdateSeenAsksBeforeOverwriting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seen := movie("Alien", "tt0078748", strPtr("8.5"), "Horror")
	seen.SeenOn = &watchedOn
	catalog := seededCatalog(t, seen)

	prompter := terminal.NewScripted("n")
	var out bytes.Buffer
	result, err := newTestCurator(catalog, prompter, &out).UpdateSeen(ctx, "Alien")
	require.NoError(t, err)
	require.False(t, result.Updated)
	require.Equal(t, "Update aborted.\n", out.String())
	require.Equal(t, []string{"You already saw this movie on 2026-09-20. Update it anyway?"}, prompter.Questions)

	result, err = newTestCurator(catalog, terminal.NewScripted("y"), io.Discard).UpdateSeen(ctx, "Alien")
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.True(t, result.Movie.SeenOn.Equal(curateDay))
}

func TestUpdateSeenUnknownMovie(t *testing.T) {
	t.Parallel()

	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))
	_, err := newTestCurator(catalog, terminal.NewScripted(), io.Discard).UpdateSeen(context.Background(), "Haet")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seen := movie("Alien", "tt0078748", strPtr("8.5"), "Horror")
	seen.SeenOn = &watchedOn
	catalog := seededCatalog(t, seen, movie("Upcoming", "tt0000012", nil, "Drama"))

	var out bytes.Buffer
	curator := newTestCurator(catalog, terminal.NewScripted(), &out)
	require.NoError(t, curator.ListMovies(ctx, domain.StatusAll))
	require.Contains(t, out.String(), "Alien")
	require.Contains(t, out.String(), "Upcoming")
	require.Contains(t, out.String(), render.MissingRating)

	out.Reset()
	require.NoError(t, curator.ListMovies(ctx, domain.StatusNotSeen))
	require.NotContains(t, out.String(), "Alien")
	require.Contains(t, out.String(), "Upcoming")
}

func TestListMoviesEmpty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	catalog := openCatalog(t, filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, newTestCurator(catalog, terminal.NewScripted(), &out).ListMovies(context.Background(), domain.StatusAll))
	require.Equal(t, "No movies found.\n", out.String())
}

func TestChooseMovieMarksThePickNotItsNamesake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := seededCatalog(t,
		movie("The Crow", "tt0109506", strPtr("7.5"), "Action"),
		movie("The Crow", "tt1340094", strPtr("4.7"), "Fantasy"),
	)
	prompter := terminal.NewScripted("fantasy", "y")

	picked, err := newTestCurator(catalog, prompter, io.Discard).ChooseMovie(ctx, domain.StatusNotSeen)
	require.NoError(t, err)
	require.Equal(t, "https://www.imdb.com/title/tt1340094", picked.Link)
	require.Equal(t, []string{"Fantasy"}, picked.Genres)
	require.True(t, picked.Seen())

	stored, err := catalog.Select(ctx, domain.Filter{Status: domain.StatusAll})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.False(t, stored[0].Seen(), "the Action namesake must stay unseen")
	require.True(t, stored[1].Seen())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestChooseMovieReportsOutputFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := seededCatalog(t, movie("Heat", "tt0113277", strPtr("8.3"), "Crime"))

	_, err := newTestCurator(catalog, terminal.NewScripted("western"), failingWriter{}).ChooseMovie(ctx, domain.StatusAll)
	require.ErrorContains(t, err, "stdout closed")

	_, err = newTestCurator(catalog, terminal.NewScripted("crime", "y"), failingWriter{}).ChooseMovie(ctx, domain.StatusAll)
	require.ErrorContains(t, err, "stdout closed")

	stored, err := catalog.FindByName(ctx, "Heat")
	require.NoError(t, err)
	require.False(t, stored.Seen())
}
