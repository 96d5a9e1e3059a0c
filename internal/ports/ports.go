package ports

import (
	"context"
	"time"

	"MovieCatalog/internal/domain"
)

// Fetcher reads raw chart and title pages.
type Fetcher interface {
	FetchListPage(ctx context.Context, url string) ([]byte, error)
	FetchDetailPage(ctx context.Context, url string) ([]byte, error)
}

// DocumentParser keeps every markup assumption behind one adapter.
type DocumentParser interface {
	ParseListing(doc []byte) ([]domain.ListEntry, error)
	ParseDetail(doc []byte) (domain.DetailInfo, error)
}

// ConfirmOverwrite is asked before replacing an existing status date.
type ConfirmOverwrite func(ctx context.Context, previous time.Time) (bool, error)

// Catalog persists movies and their status dates.
type Catalog interface {
	CreateSchema(ctx context.Context) error
	Rebuild(ctx context.Context, movies []domain.Movie) error
	Insert(ctx context.Context, movie domain.Movie) (int64, error)
	MarkSeen(ctx context.Context, name string, date time.Time, confirm ConfirmOverwrite) (domain.MarkResult, error)
	MarkSeenByID(ctx context.Context, id int64, date time.Time, confirm ConfirmOverwrite) (domain.MarkResult, error)
	Select(ctx context.Context, filter domain.Filter) ([]domain.Movie, error)
	FindByName(ctx context.Context, name string) (domain.Movie, error)
	FindByID(ctx context.Context, id int64) (domain.Movie, error)
}

// Prompter is the interactive input capability.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
	Ask(ctx context.Context, question string) (string, error)
}
