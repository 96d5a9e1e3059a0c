package render

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"MovieCatalog/internal/domain"
)

const (
	// MissingRating stands in for a movie without an aggregate rating.
	MissingRating = "--No Rating--"
	// ColumnSeparator sits between the left and right table.
	ColumnSeparator = "\t"

	missingValue = "--"
)

type indexedRow struct {
	Index  int
	Name   string
	Rating string
}

// splitRows cuts rows at ceil(n/2). Numbering is continuous: the right half
// starts where the left half stops.
func splitRows(rows []domain.NameRating) (left, right []indexedRow) {
	half := (len(rows) + 1) / 2
	for i, r := range rows {
		row := indexedRow{Index: i + 1, Name: r.Name, Rating: MissingRating}
		if r.Rating != nil {
			row.Rating = *r.Rating
		}
		if i < half {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return left, right
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	return t
}

func renderHalf(rows []indexedRow) []string {
	if len(rows) == 0 {
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"Index", "Movie Name", "Rating IMDB"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Index, r.Name, r.Rating})
	}
	return strings.Split(t.Render(), "\n")
}

// interleave pads the shorter side with empty lines and joins both sides
// line by line.
func interleave(left, right []string) []string {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		out[i] = l + ColumnSeparator + r
	}
	return out
}

// RenderColumns lays the name/rating pairs out as two side-by-side tables.
func RenderColumns(rows []domain.NameRating) string {
	if len(rows) == 0 {
		return ""
	}
	left, right := splitRows(rows)
	return strings.Join(interleave(renderHalf(left), renderHalf(right)), "\n")
}

// RenderMovie prints every field of one record as a two-column card.
func RenderMovie(m domain.Movie) string {
	t := newTable()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})

	released := "No"
	if m.Released() {
		released = "Yes"
	}
	year := missingValue
	if m.Year != nil {
		year = strconv.Itoa(*m.Year)
	}
	seen := "No"
	if m.SeenOn != nil {
		seen = m.SeenOn.Format(domain.DateLayout)
	}
	genres := missingValue
	if len(m.Genres) > 0 {
		genres = strings.Join(m.Genres, domain.GenreSeparator)
	}

	t.AppendRows([]table.Row{
		{"Name", m.Name},
		{"Link", m.Link},
		{"IMDb Rating", orMissing(m.Rating)},
		{"MPAA Rating", orMissing(m.Classification)},
		{"Year", year},
		{"Released yet", released},
		{"Duration", orMissing(m.Duration)},
		{"Added to catalog", m.AddedOn.Format(domain.DateLayout)},
		{"Genres", genres},
		{"Director", orText(m.Director)},
		{"Language", orText(m.Language)},
		{"Seen", seen},
	})
	return t.Render()
}

func orMissing(s *string) string {
	if s == nil {
		return missingValue
	}
	return *s
}

func orText(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}
