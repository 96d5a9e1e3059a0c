package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/antzucaro/matchr"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/ports"

	_ "modernc.org/sqlite"
)

// suggestionThreshold is the Jaro-Winkler similarity a catalog name needs
// before it is offered as a "did you mean".
const suggestionThreshold = 0.8

// SQLiteCatalog persists the movie catalog into a single SQLite table.
type SQLiteCatalog struct {
	db *sql.DB
}

var _ ports.Catalog = (*SQLiteCatalog)(nil)

// Open connects to the catalog file at path. The pool is limited to one
// connection; the catalog has a single writer.
func Open(ctx context.Context, path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog %s: %w", path, err)
	}

	return NewSQLiteCatalog(db), nil
}

// NewSQLiteCatalog wires an existing sql.DB.
func NewSQLiteCatalog(db *sql.DB) *SQLiteCatalog {
	return &SQLiteCatalog{db: db}
}

// Close releases the connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// CreateSchema creates the movies table if it is absent.
func (c *SQLiteCatalog) CreateSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Rebuild replaces the whole table with movies in one transaction. On any
// failure the previous table is left as it was.
func (c *SQLiteCatalog) Rebuild(ctx context.Context, movies []domain.Movie) error {
	if len(movies) == 0 {
		return fmt.Errorf("rebuild catalog: refusing to replace catalog with an empty dataset")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+moviesTable); err != nil {
		return fmt.Errorf("drop catalog: %w", err)
	}
	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, movie := range movies {
		if _, err := insertMovie(ctx, tx, movie); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// Insert adds one movie and returns its assigned id.
func (c *SQLiteCatalog) Insert(ctx context.Context, movie domain.Movie) (int64, error) {
	return insertMovie(ctx, c.db, movie)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMovie(ctx context.Context, db execer, movie domain.Movie) (int64, error) {
	released := "No"
	if movie.Released() {
		released = "Yes"
	}

	query, args, err := sq.Insert(moviesTable).
		Columns(movieColumns[1:]...).
		Values(
			movie.Name,
			movie.Link,
			nullString(movie.Rating),
			nullString(movie.Classification),
			nullInt(movie.Year),
			released,
			nullString(movie.Duration),
			nullString(domain.JoinGenres(movie.Genres)),
			movie.Director,
			movie.Language,
			nullString(movie.Cast),
			movie.AddedOn.Format(domain.DateLayout),
			nullDate(movie.SeenOn),
		).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert movie %q: %w", movie.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert movie %q: last id: %w", movie.Name, err)
	}
	return id, nil
}

// MarkSeen sets the status date of the movie called name. An existing date is
// only overwritten when confirm agrees; a nil confirm always overwrites.
func (c *SQLiteCatalog) MarkSeen(ctx context.Context, name string, date time.Time, confirm ports.ConfirmOverwrite) (domain.MarkResult, error) {
	movie, err := c.FindByName(ctx, name)
	if err != nil {
		return domain.MarkResult{}, err
	}
	return c.markSeen(ctx, movie, date, confirm)
}

// MarkSeenByID is MarkSeen keyed by row id, for callers that already hold the
// record. Names are not unique; ids are.
func (c *SQLiteCatalog) MarkSeenByID(ctx context.Context, id int64, date time.Time, confirm ports.ConfirmOverwrite) (domain.MarkResult, error) {
	movie, err := c.FindByID(ctx, id)
	if err != nil {
		return domain.MarkResult{}, err
	}
	return c.markSeen(ctx, movie, date, confirm)
}

func (c *SQLiteCatalog) markSeen(ctx context.Context, movie domain.Movie, date time.Time, confirm ports.ConfirmOverwrite) (domain.MarkResult, error) {
	result := domain.MarkResult{Movie: movie, Previous: movie.SeenOn}
	if movie.SeenOn != nil && confirm != nil {
		ok, err := confirm(ctx, *movie.SeenOn)
		if err != nil {
			return domain.MarkResult{}, fmt.Errorf("confirm overwrite: %w", err)
		}
		if !ok {
			return result, nil
		}
	}

	seen := domain.Today(date)
	query, args, err := sq.Update(moviesTable).
		Set("seen", seen.Format(domain.DateLayout)).
		Where(sq.Eq{"id": movie.ID}).
		ToSql()
	if err != nil {
		return domain.MarkResult{}, fmt.Errorf("build update: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return domain.MarkResult{}, fmt.Errorf("mark %q seen: %w", movie.Name, err)
	}

	result.Movie.SeenOn = &seen
	result.Updated = true
	return result, nil
}

// FindByID returns the movie stored under id.
func (c *SQLiteCatalog) FindByID(ctx context.Context, id int64) (domain.Movie, error) {
	query, args, err := sq.Select(movieColumns...).
		From(moviesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Movie{}, fmt.Errorf("build lookup: %w", err)
	}

	movie, err := scanMovie(c.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Movie{}, &domain.NotFoundError{Name: fmt.Sprintf("#%d", id)}
	}
	if err != nil {
		return domain.Movie{}, fmt.Errorf("lookup #%d: %w", id, err)
	}
	return movie, nil
}

// FindByName returns the first movie whose name matches, preferring an exact
// match over a case-insensitive one.
func (c *SQLiteCatalog) FindByName(ctx context.Context, name string) (domain.Movie, error) {
	query, args, err := sq.Select(movieColumns...).
		From(moviesTable).
		Where(sq.Expr("name = ? COLLATE NOCASE", name)).
		OrderByClause("name = ? DESC, id", name).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Movie{}, fmt.Errorf("build lookup: %w", err)
	}

	movie, err := scanMovie(c.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Movie{}, &domain.NotFoundError{Name: name, Suggestion: c.suggest(ctx, name)}
	}
	if err != nil {
		return domain.Movie{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	return movie, nil
}

func (c *SQLiteCatalog) suggest(ctx context.Context, name string) string {
	rows, err := c.db.QueryContext(ctx, "SELECT name FROM "+moviesTable)
	if err != nil {
		return ""
	}
	defer rows.Close()

	var best string
	var bestScore float64
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return ""
		}
		if score := matchr.JaroWinkler(name, candidate, false); score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}

// Select returns movies in chart order, narrowed by filter.
func (c *SQLiteCatalog) Select(ctx context.Context, filter domain.Filter) ([]domain.Movie, error) {
	q := sq.Select(movieColumns...).From(moviesTable).OrderBy("id")

	switch filter.Status {
	case domain.StatusSeen:
		q = q.Where(sq.NotEq{"seen": nil})
	case domain.StatusNotSeen:
		q = q.Where(sq.Eq{"seen": nil})
	}
	if filter.RequireGenres {
		q = q.Where(sq.And{sq.NotEq{"genres": nil}, sq.NotEq{"genres": ""}})
	}
	if filter.RequireRating {
		q = q.Where(sq.NotEq{"rating_imdb": nil})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}

	var movies []domain.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return movies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (domain.Movie, error) {
	var (
		movie          domain.Movie
		rating         sql.NullString
		classification sql.NullString
		year           sql.NullInt64
		released       sql.NullString
		duration       sql.NullString
		genres         sql.NullString
		director       sql.NullString
		language       sql.NullString
		cast           sql.NullString
		added          string
		seen           sql.NullString
	)

	err := row.Scan(
		&movie.ID,
		&movie.Name,
		&movie.Link,
		&rating,
		&classification,
		&year,
		&released,
		&duration,
		&genres,
		&director,
		&language,
		&cast,
		&added,
		&seen,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Rating = stringPtr(rating)
	movie.Classification = stringPtr(classification)
	movie.Duration = stringPtr(duration)
	movie.Cast = stringPtr(cast)
	movie.Director = director.String
	movie.Language = language.String
	if year.Valid {
		y := int(year.Int64)
		movie.Year = &y
	}
	if genres.Valid {
		movie.Genres = domain.SplitGenres(genres.String)
	}

	if movie.AddedOn, err = time.Parse(domain.DateLayout, added); err != nil {
		return domain.Movie{}, fmt.Errorf("add_to_db_date of %q: %w", movie.Name, err)
	}
	if seen.Valid {
		t, err := time.Parse(domain.DateLayout, seen.String)
		if err != nil {
			return domain.Movie{}, fmt.Errorf("seen date of %q: %w", movie.Name, err)
		}
		movie.SeenOn = &t
	}

	return movie, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
