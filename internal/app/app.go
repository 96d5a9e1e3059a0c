package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"MovieCatalog/internal/config"
	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/infrastructure/fetcher"
	"MovieCatalog/internal/infrastructure/parser"
	"MovieCatalog/internal/infrastructure/storage"
	"MovieCatalog/internal/infrastructure/terminal"
	"MovieCatalog/internal/logging"
	"MovieCatalog/internal/ports"
	"MovieCatalog/internal/source"
	"MovieCatalog/internal/usecase"
)

// Source kinds understood by the registry.
const (
	SourceHTTP    = "http"
	SourceFixture = "fixture"
)

// Streams are the terminal the commands talk to.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

// Application wires configs to use cases. Every command opens the catalog
// itself and closes it before returning.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	sources  *source.Registry
	prompter ports.Prompter
	out      io.Writer
	now      func() time.Time
	rng      *rand.Rand
}

// New builds the application around cfg.
func New(cfg config.Config, baseLogger *slog.Logger, streams Streams) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if streams.In == nil {
		streams.In = os.Stdin
	}
	if streams.Out == nil {
		streams.Out = os.Stdout
	}

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		sources:  source.NewRegistry(),
		prompter: terminal.NewPrompter(streams.In, streams.Out),
		out:      streams.Out,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	// The header file is read only when the live source is resolved.
	a.sources.Register(SourceHTTP, func() (ports.Fetcher, error) {
		headers, err := config.LoadHeaders(cfg.Source.HeadersFile)
		if err != nil {
			return nil, err
		}
		return fetcher.NewHTTPFetcher(headers, cfg.Source.Timeout, baseLogger.With("component", "fetcher.http")), nil
	})
	a.sources.Register(SourceFixture, func() (ports.Fetcher, error) {
		if cfg.Source.FixtureDir == "" {
			return nil, &domain.ConfigError{Path: "source.fixtureDir", Err: errors.New("fixture source needs a directory")}
		}
		return fetcher.NewFixtureFetcher(cfg.Source.FixtureDir), nil
	})

	return a
}

// Rebuild scrapes the chart and replaces the catalog. An existing catalog
// file is only replaced after confirmation. A catalog file created by a
// failed run is removed again.
func (a *Application) Rebuild(ctx context.Context) error {
	policy, err := a.policy()
	if err != nil {
		return err
	}

	src, err := a.sources.Resolve(a.cfg.Source.Kind)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}

	path := a.cfg.Database.Path
	_, statErr := os.Stat(path)
	existed := statErr == nil
	if existed {
		ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("Are you sure you want to overwrite %s?", path))
		if err != nil {
			return fmt.Errorf("confirm overwrite: %w", err)
		}
		if !ok {
			_, err = fmt.Fprintln(a.out, "Database creation aborted.")
			return err
		}
	}

	catalog, err := storage.Open(ctx, path)
	if err != nil {
		return err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: src,
		Parser:  parser.NewIMDbParser(a.cfg.Selectors, a.cfg.Source.TitleBaseURL, a.logger.With("component", "parser.imdb")),
		Catalog: catalog,
		Logger:  a.logger,
		Now:     a.now,
		ListURL: a.cfg.Source.ListURL,
		Policy:  policy,
	})

	report, err := pipeline.Rebuild(ctx)
	closeErr := catalog.Close()
	if err != nil {
		if !existed {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				a.logger.Warn("remove unfinished catalog", "path", path, "error", rmErr)
			}
		}
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("close catalog: %w", closeErr)
	}

	_, err = fmt.Fprintf(a.out, "Stored %d of %d movies in %s.\n", report.Stored, report.Listed, path)
	return err
}

// List prints the catalog filtered by status.
func (a *Application) List(ctx context.Context, status domain.StatusFilter) error {
	return a.withCurator(ctx, func(c *usecase.Curator) error {
		return c.ListMovies(ctx, status)
	})
}

// UpdateSeen marks the named movie as seen today.
func (a *Application) UpdateSeen(ctx context.Context, name string) error {
	return a.withCurator(ctx, func(c *usecase.Curator) error {
		_, err := c.UpdateSeen(ctx, name)
		return err
	})
}

// Choose runs the interactive pick loop over movies matching status.
func (a *Application) Choose(ctx context.Context, status domain.StatusFilter) error {
	return a.withCurator(ctx, func(c *usecase.Curator) error {
		_, err := c.ChooseMovie(ctx, status)
		return err
	})
}

func (a *Application) withCurator(ctx context.Context, run func(*usecase.Curator) error) error {
	catalog, err := storage.Open(ctx, a.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.CreateSchema(ctx); err != nil {
		return err
	}

	return run(usecase.NewCurator(usecase.CuratorDeps{
		Catalog:  catalog,
		Prompter: a.prompter,
		Out:      a.out,
		Rand:     a.rng,
		Now:      a.now,
		Logger:   a.logger,
	}))
}

func (a *Application) policy() (usecase.EnrichmentPolicy, error) {
	gateway, err := usecase.ParseFailureAction(a.cfg.Source.Policy.GatewayTimeout)
	if err != nil {
		return usecase.EnrichmentPolicy{}, &domain.ConfigError{Path: "source.policy.gatewayTimeout", Err: err}
	}
	other, err := usecase.ParseFailureAction(a.cfg.Source.Policy.OtherFailure)
	if err != nil {
		return usecase.EnrichmentPolicy{}, &domain.ConfigError{Path: "source.policy.otherFailure", Err: err}
	}
	return usecase.EnrichmentPolicy{GatewayTimeout: gateway, OtherFailure: other}, nil
}
