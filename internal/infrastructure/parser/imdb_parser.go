package parser

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"MovieCatalog/internal/config"
	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/ports"
)

// metadataSlots is how many positional tokens a chart row may carry:
// year, duration, classification.
const metadataSlots = 3

var errBlockMissing = errors.New("block not present")

// IMDbParser extracts chart entries and title details from IMDb markup.
type IMDbParser struct {
	sel          config.SelectorConfig
	titleBaseURL string
	logger       *slog.Logger
}

var _ ports.DocumentParser = (*IMDbParser)(nil)

// NewIMDbParser wires selectors; links are rebuilt on top of titleBaseURL.
func NewIMDbParser(sel config.SelectorConfig, titleBaseURL string, log *slog.Logger) *IMDbParser {
	if titleBaseURL != "" && !strings.HasSuffix(titleBaseURL, "/") {
		titleBaseURL += "/"
	}
	return &IMDbParser{sel: sel, titleBaseURL: titleBaseURL, logger: log}
}

// ParseListing returns chart entries in page order.
func (p *IMDbParser) ParseListing(doc []byte) ([]domain.ListEntry, error) {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, &domain.ParseError{Block: "listing", Err: err}
	}

	var entries []domain.ListEntry
	root.Find(p.sel.ListEntry).Each(func(i int, item *goquery.Selection) {
		entry, ok := p.parseEntry(item)
		if !ok {
			p.debug("skip chart row without title link", "position", i+1)
			return
		}
		entries = append(entries, entry)
	})

	return entries, nil
}

func (p *IMDbParser) parseEntry(item *goquery.Selection) (domain.ListEntry, bool) {
	link := item.Find(p.sel.TitleLink).First()
	href, ok := link.Attr("href")
	if !ok {
		return domain.ListEntry{}, false
	}

	name := strings.TrimSpace(link.Find(p.sel.TitleName).First().Text())
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}

	titleID := titleIDFromHref(href)
	if name == "" || titleID == "" {
		return domain.ListEntry{}, false
	}

	entry := domain.ListEntry{
		Name: name,
		Link: p.titleBaseURL + titleID,
	}

	if rating := item.Find(p.sel.Rating).First(); rating.Length() > 0 {
		entry.Rating = ratingToken(rating, p.sel.RatingValue)
	}

	tokens := make([]*string, metadataSlots)
	item.Find(p.sel.MetadataItem).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= metadataSlots {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			tokens[i] = &text
		}
		return true
	})
	entry.Year, entry.Duration, entry.Classification = tokens[0], tokens[1], tokens[2]

	return entry, true
}

// ParseDetail reads genres, the first principal credit and the first language.
func (p *IMDbParser) ParseDetail(doc []byte) (domain.DetailInfo, error) {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return domain.DetailInfo{}, &domain.ParseError{Block: "detail", Err: err}
	}

	genresBlock := root.Find(p.sel.Genres).First()
	if genresBlock.Length() == 0 {
		return domain.DetailInfo{}, &domain.ParseError{Block: "genres", Err: errBlockMissing}
	}
	var genres []string
	genresBlock.Find(p.sel.GenreChip).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			genres = append(genres, text)
		}
	})

	credit := root.Find(p.sel.PrincipalCredit).First()
	if credit.Length() == 0 {
		return domain.DetailInfo{}, &domain.ParseError{Block: "credits", Err: errBlockMissing}
	}
	director := strings.TrimSpace(credit.Find(p.sel.CreditLink).First().Text())
	if director == "" {
		return domain.DetailInfo{}, &domain.ParseError{Block: "credits", Err: fmt.Errorf("no credited person")}
	}

	details := root.Find(p.sel.DetailsSection).First()
	if details.Length() == 0 {
		return domain.DetailInfo{}, &domain.ParseError{Block: "details", Err: errBlockMissing}
	}
	languages := details.Find(p.sel.Languages).First()
	if languages.Length() == 0 {
		return domain.DetailInfo{}, &domain.ParseError{Block: "languages", Err: errBlockMissing}
	}
	language := strings.TrimSpace(languages.Find(p.sel.CreditLink).First().Text())
	if language == "" {
		return domain.DetailInfo{}, &domain.ParseError{Block: "languages", Err: fmt.Errorf("no language listed")}
	}

	return domain.DetailInfo{
		Genres:   genres,
		Director: director,
		Language: language,
	}, nil
}

// titleIDFromHref picks "tt123" out of "/title/tt123/?ref_=...".
func titleIDFromHref(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	parts := strings.Split(href, "/")
	for i, part := range parts {
		if part == "title" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 2 {
		return parts[2]
	}
	return ""
}

func ratingToken(rating *goquery.Selection, valueSel string) *string {
	text := ""
	if valueSel != "" {
		text = strings.TrimSpace(rating.Find(valueSel).First().Text())
	}
	if text == "" {
		fields := strings.Fields(rating.Text())
		if len(fields) > 0 {
			text = fields[0]
		}
	}
	if text == "" {
		return nil
	}
	return &text
}

func (p *IMDbParser) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
