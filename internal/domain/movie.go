package domain

import (
	"fmt"
	"strings"
	"time"
)

// GenreSeparator joins a movie's genres into the single persisted column.
const GenreSeparator = ", "

// DateLayout is how catalog dates are persisted and printed.
const DateLayout = "2006-01-02"

// Movie is a normalized catalog record built from a chart entry and its title page.
type Movie struct {
	ID             int64
	Name           string
	Link           string
	Rating         *string
	Classification *string
	Year           *int
	Duration       *string
	Genres         []string
	Director       string
	Language       string
	Cast           *string
	AddedOn        time.Time
	SeenOn         *time.Time
}

// Released reports whether the chart showed an aggregate rating for the movie.
func (m Movie) Released() bool {
	return m.Rating != nil
}

// Seen reports whether the movie carries a status date.
func (m Movie) Seen() bool {
	return m.SeenOn != nil
}

// ListEntry is one chart row before enrichment. Positional metadata the chart
// did not show is nil.
type ListEntry struct {
	Name           string
	Link           string
	Rating         *string
	Year           *string
	Duration       *string
	Classification *string
}

// DetailInfo holds what the title page contributes to a record.
type DetailInfo struct {
	Genres   []string
	Director string
	Language string
}

// NameRating is the projection used by the list view.
type NameRating struct {
	Name   string
	Rating *string
}

// JoinGenres flattens a genre set into its persisted form; an empty set is absent.
func JoinGenres(genres []string) *string {
	if len(genres) == 0 {
		return nil
	}
	joined := strings.Join(genres, GenreSeparator)
	return &joined
}

// SplitGenres reverses JoinGenres.
func SplitGenres(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, GenreSeparator)
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

// StatusFilter selects movies by their status date.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusSeen    StatusFilter = "seen"
	StatusNotSeen StatusFilter = "not-seen"
)

// ParseStatusFilter accepts the CLI spelling of a status filter.
func ParseStatusFilter(value string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(value))); f {
	case StatusAll, StatusSeen, StatusNotSeen:
		return f, nil
	default:
		return "", fmt.Errorf("unknown status filter %q (want all, seen or not-seen)", value)
	}
}

// Filter narrows catalog reads.
type Filter struct {
	Status        StatusFilter
	RequireGenres bool
	RequireRating bool
}

// MarkResult describes the outcome of a status update.
type MarkResult struct {
	Movie    Movie
	Updated  bool
	Previous *time.Time
}

// RebuildReport summarizes one scrape.
type RebuildReport struct {
	RunID       string
	Listed      int
	Stored      int
	Duplicates  int
	Warned      int
	Dropped     int
	ParseFailed int
}

// Today truncates t to its calendar day in t's location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
