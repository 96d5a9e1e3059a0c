package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/logging"
	"MovieCatalog/internal/ports"
	"MovieCatalog/internal/render"
)

// AnyGenre is offered next to the real genres and matches every movie.
const AnyGenre = "Any"

// CuratorDeps wires the read paths over the catalog.
type CuratorDeps struct {
	Catalog  ports.Catalog
	Prompter ports.Prompter
	Out      io.Writer
	Rand     *rand.Rand
	Now      func() time.Time
	Logger   *slog.Logger
}

// Curator implements listing, status updates and the random pick loop.
type Curator struct {
	catalog  ports.Catalog
	prompter ports.Prompter
	out      io.Writer
	rng      *rand.Rand
	now      func() time.Time
	logger   *slog.Logger
}

// NewCurator constructs the curation use cases.
func NewCurator(deps CuratorDeps) *Curator {
	c := &Curator{
		catalog:  deps.Catalog,
		prompter: deps.Prompter,
		out:      deps.Out,
		rng:      deps.Rand,
		now:      deps.Now,
		logger:   deps.Logger,
	}
	if c.out == nil {
		c.out = io.Discard
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	c.logger = c.logger.With("component", "curator")
	return c
}

// ListMovies prints names and ratings of the movies matching status as two
// side-by-side tables.
func (c *Curator) ListMovies(ctx context.Context, status domain.StatusFilter) error {
	movies, err := c.catalog.Select(ctx, domain.Filter{Status: status})
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}
	if len(movies) == 0 {
		_, err := fmt.Fprintln(c.out, "No movies found.")
		return err
	}

	rows := make([]domain.NameRating, len(movies))
	for i, m := range movies {
		rows[i] = domain.NameRating{Name: m.Name, Rating: m.Rating}
	}
	_, err = fmt.Fprintln(c.out, render.RenderColumns(rows))
	return err
}

// UpdateSeen stamps today's date on the named movie. An existing date is only
// replaced after the user agrees.
func (c *Curator) UpdateSeen(ctx context.Context, name string) (domain.MarkResult, error) {
	confirm := func(ctx context.Context, previous time.Time) (bool, error) {
		question := fmt.Sprintf("You already saw this movie on %s. Update it anyway?", previous.Format(domain.DateLayout))
		return c.prompter.Confirm(ctx, question)
	}

	result, err := c.catalog.MarkSeen(ctx, name, domain.Today(c.now()), confirm)
	if err != nil {
		return result, fmt.Errorf("update seen: %w", err)
	}

	if !result.Updated {
		_, err = fmt.Fprintln(c.out, "Update aborted.")
		return result, err
	}

	c.logger.Info("movie marked seen", "name", result.Movie.Name)
	_, err = fmt.Fprintln(c.out, render.RenderMovie(result.Movie))
	return result, err
}

type selectionState int

const (
	stateFilter selectionState = iota
	stateOffer
	statePick
	stateDisplay
	stateConfirm
	stateAccept
	stateDone
)

// ChooseMovie runs the interactive pick loop: the user names a genre, a
// random movie of that genre is shown, and accepting it marks it seen today.
// Rejecting goes back to the genre question with the same pool.
func (c *Curator) ChooseMovie(ctx context.Context, status domain.StatusFilter) (domain.Movie, error) {
	var (
		pool       []domain.Movie
		genres     []string
		candidates []domain.Movie
		pick       domain.Movie
	)

	state := stateFilter
	for state != stateDone {
		if err := ctx.Err(); err != nil {
			return domain.Movie{}, err
		}

		switch state {
		case stateFilter:
			var err error
			pool, err = c.catalog.Select(ctx, domain.Filter{Status: status, RequireGenres: true, RequireRating: true})
			if err != nil {
				return domain.Movie{}, fmt.Errorf("choose movie: %w", err)
			}
			if len(pool) == 0 {
				return domain.Movie{}, domain.ErrEmptyPool
			}
			genres = distinctGenres(pool)
			state = stateOffer

		case stateOffer:
			options := append(append([]string(nil), genres...), AnyGenre)
			answer, err := c.prompter.Ask(ctx, "Pick a genre ("+strings.Join(options, ", ")+")")
			if err != nil {
				return domain.Movie{}, fmt.Errorf("choose genre: %w", err)
			}

			genre, ok := matchGenre(options, answer)
			if !ok {
				if _, err := fmt.Fprintf(c.out, "Unknown genre %q.\n", answer); err != nil {
					return domain.Movie{}, err
				}
				continue
			}
			candidates = candidatesFor(pool, genre)
			state = statePick

		case statePick:
			pick = candidates[c.rng.IntN(len(candidates))]
			state = stateDisplay

		case stateDisplay:
			if _, err := fmt.Fprintln(c.out, render.RenderMovie(pick)); err != nil {
				return domain.Movie{}, err
			}
			state = stateConfirm

		case stateConfirm:
			ok, err := c.prompter.Confirm(ctx, "Do you want to watch this movie?")
			if err != nil {
				return domain.Movie{}, fmt.Errorf("confirm pick: %w", err)
			}
			if ok {
				state = stateAccept
			} else {
				state = stateOffer
			}

		case stateAccept:
			// Accepting the pick is consent to replace an older seen date.
			// The pick is marked by id; another movie may share its name.
			result, err := c.catalog.MarkSeenByID(ctx, pick.ID, domain.Today(c.now()), nil)
			if err != nil {
				return domain.Movie{}, fmt.Errorf("mark pick seen: %w", err)
			}
			c.logger.Info("movie chosen", "name", result.Movie.Name)
			pick = result.Movie
			state = stateDone
		}
	}
	return pick, nil
}

// distinctGenres explodes every movie into one row per genre and returns the
// distinct genres in alphabetical order.
func distinctGenres(pool []domain.Movie) []string {
	set := make(map[string]struct{})
	for _, m := range pool {
		for _, g := range m.Genres {
			set[g] = struct{}{}
		}
	}
	genres := make([]string, 0, len(set))
	for g := range set {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

func matchGenre(options []string, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	return "", false
}

// candidatesFor lists each movie at most once, so a movie with many genres
// is not more likely to be picked under AnyGenre.
func candidatesFor(pool []domain.Movie, genre string) []domain.Movie {
	if genre == AnyGenre {
		return pool
	}
	var out []domain.Movie
	for _, m := range pool {
		for _, g := range m.Genres {
			if g == genre {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
