package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/logging"
	"MovieCatalog/internal/ports"
)

// FailureAction decides what a failed title page does to a rebuild.
type FailureAction string

const (
	// ActionWarn skips the movie and logs a warning.
	ActionWarn FailureAction = "warn"
	// ActionDrop skips the movie quietly.
	ActionDrop FailureAction = "drop"
	// ActionAbort fails the whole rebuild; the stored catalog is not touched.
	ActionAbort FailureAction = "abort"
)

// ParseFailureAction accepts the configured spelling of an action.
func ParseFailureAction(value string) (FailureAction, error) {
	switch a := FailureAction(strings.ToLower(strings.TrimSpace(value))); a {
	case ActionWarn, ActionDrop, ActionAbort:
		return a, nil
	default:
		return "", fmt.Errorf("unknown failure action %q (want warn, drop or abort)", value)
	}
}

// EnrichmentPolicy maps title page failures to actions.
type EnrichmentPolicy struct {
	// GatewayTimeout applies to an upstream 504.
	GatewayTimeout FailureAction
	// OtherFailure applies to every other status or transport failure.
	OtherFailure FailureAction
}

// DefaultPolicy warns on gateway timeouts and drops everything else.
func DefaultPolicy() EnrichmentPolicy {
	return EnrichmentPolicy{GatewayTimeout: ActionWarn, OtherFailure: ActionDrop}
}

func (p EnrichmentPolicy) actionFor(err error) FailureAction {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) && fetchErr.IsGatewayTimeout() {
		return p.GatewayTimeout
	}
	return p.OtherFailure
}

// PipelineDeps wires the driven adapters into the rebuild pipeline.
type PipelineDeps struct {
	Fetcher ports.Fetcher
	Parser  ports.DocumentParser
	Catalog ports.Catalog
	Logger  *slog.Logger
	Now     func() time.Time
	ListURL string
	Policy  EnrichmentPolicy
}

// Pipeline scrapes the chart, enriches every entry from its title page and
// replaces the catalog with the result.
type Pipeline struct {
	fetcher ports.Fetcher
	parser  ports.DocumentParser
	catalog ports.Catalog
	logger  *slog.Logger
	now     func() time.Time
	listURL string
	policy  EnrichmentPolicy
}

// NewPipeline constructs the rebuild pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		fetcher: deps.Fetcher,
		parser:  deps.Parser,
		catalog: deps.Catalog,
		logger:  logger.With("component", "pipeline"),
		now:     now,
		listURL: deps.ListURL,
		policy:  deps.Policy,
	}
}

// Rebuild runs one scrape and swaps the catalog contents for it. Any error
// before the final swap leaves the stored catalog as it was.
func (p *Pipeline) Rebuild(ctx context.Context) (domain.RebuildReport, error) {
	report := domain.RebuildReport{RunID: uuid.NewString()}
	log := p.logger.With("run_id", report.RunID)

	raw, err := p.fetcher.FetchListPage(ctx, p.listURL)
	if err != nil {
		return report, fmt.Errorf("fetch chart: %w", err)
	}

	entries, err := p.parser.ParseListing(raw)
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) && parseErr.URL == "" {
			parseErr.URL = p.listURL
		}
		return report, fmt.Errorf("parse chart: %w", err)
	}
	if len(entries) == 0 {
		return report, domain.ErrEmptyListing
	}
	report.Listed = len(entries)
	log.Info("chart parsed", "entries", len(entries))

	today := domain.Today(p.now())
	seen := make(map[string]struct{}, len(entries))
	movies := make([]domain.Movie, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if _, dup := seen[entry.Link]; dup {
			report.Duplicates++
			log.Debug("duplicate chart entry", "name", entry.Name, "link", entry.Link)
			continue
		}
		seen[entry.Link] = struct{}{}

		detail, ok, err := p.enrich(ctx, log, entry, &report)
		if err != nil {
			return report, err
		}
		if !ok {
			continue
		}
		movies = append(movies, normalize(log, entry, detail, today))
	}

	if len(movies) == 0 {
		return report, fmt.Errorf("enrich chart: %w", domain.ErrEmptyListing)
	}

	if err := p.catalog.Rebuild(ctx, movies); err != nil {
		return report, fmt.Errorf("store catalog: %w", err)
	}
	report.Stored = len(movies)

	log.Info("catalog rebuilt",
		"listed", report.Listed,
		"stored", report.Stored,
		"duplicates", report.Duplicates,
		"warned", report.Warned,
		"dropped", report.Dropped,
		"parse_failed", report.ParseFailed)
	return report, nil
}

// enrich reads the title page of entry. ok is false when the movie is skipped.
func (p *Pipeline) enrich(ctx context.Context, log *slog.Logger, entry domain.ListEntry, report *domain.RebuildReport) (domain.DetailInfo, bool, error) {
	raw, err := p.fetcher.FetchDetailPage(ctx, entry.Link)
	if err != nil {
		switch p.policy.actionFor(err) {
		case ActionAbort:
			return domain.DetailInfo{}, false, fmt.Errorf("enrich %q: %w", entry.Name, err)
		case ActionWarn:
			report.Warned++
			log.Warn("skipping movie", "name", entry.Name, "error", err)
		default:
			report.Dropped++
			log.Debug("dropping movie", "name", entry.Name, "error", err)
		}
		return domain.DetailInfo{}, false, nil
	}

	detail, err := p.parser.ParseDetail(raw)
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = entry.Link
		}
		report.ParseFailed++
		log.Warn("skipping unreadable title page", "name", entry.Name, "error", err)
		return domain.DetailInfo{}, false, nil
	}
	return detail, true, nil
}

func normalize(log *slog.Logger, entry domain.ListEntry, detail domain.DetailInfo, today time.Time) domain.Movie {
	movie := domain.Movie{
		Name:           entry.Name,
		Link:           entry.Link,
		Rating:         entry.Rating,
		Classification: entry.Classification,
		Duration:       entry.Duration,
		Genres:         detail.Genres,
		Director:       detail.Director,
		Language:       detail.Language,
		AddedOn:        today,
	}

	if entry.Year != nil {
		if year, err := strconv.Atoi(strings.TrimSpace(*entry.Year)); err == nil {
			movie.Year = &year
		} else {
			log.Debug("non-numeric year", "name", entry.Name, "year", *entry.Year)
		}
	}
	return movie
}
