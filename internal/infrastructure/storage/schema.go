package storage

const moviesTable = "movies"

// Schema creates the catalog table. Dates are ISO-8601 TEXT so the driver
// hands them back untouched.
const Schema = `
CREATE TABLE IF NOT EXISTS movies (
	id             INTEGER PRIMARY KEY,
	name           TEXT NOT NULL,
	link           TEXT NOT NULL UNIQUE,
	rating_imdb    TEXT,
	rating_mpaa    TEXT,
	year           INTEGER,
	released       TEXT,
	duration       TEXT,
	genres         TEXT,
	director       TEXT,
	language       TEXT,
	actors         TEXT,
	add_to_db_date TEXT NOT NULL,
	seen           TEXT
);

CREATE INDEX IF NOT EXISTS idx_movies_name ON movies(name);
`

var movieColumns = []string{
	"id",
	"name",
	"link",
	"rating_imdb",
	"rating_mpaa",
	"year",
	"released",
	"duration",
	"genres",
	"director",
	"language",
	"actors",
	"add_to_db_date",
	"seen",
}
