package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/ports"
)

// ListFixture is the file a FixtureFetcher serves for the chart page.
const ListFixture = "list.html"

// FixtureFetcher serves pages from a directory so a rebuild can run offline.
// Title pages are looked up as "<title id>.html"; a "<title id>.504" file
// answers with a gateway timeout.
type FixtureFetcher struct {
	dir string
}

var _ ports.Fetcher = (*FixtureFetcher)(nil)

// NewFixtureFetcher reads pages from dir.
func NewFixtureFetcher(dir string) *FixtureFetcher {
	return &FixtureFetcher{dir: dir}
}

// FetchListPage serves list.html.
func (f *FixtureFetcher) FetchListPage(ctx context.Context, pageURL string) ([]byte, error) {
	return f.read(ctx, pageURL, ListFixture)
}

// FetchDetailPage serves the title page named after the last path segment of pageURL.
func (f *FixtureFetcher) FetchDetailPage(ctx context.Context, pageURL string) ([]byte, error) {
	name := fixtureName(pageURL)
	if name == "" {
		return nil, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("cannot derive fixture name")}
	}

	if _, err := os.Stat(filepath.Join(f.dir, name+".504")); err == nil {
		return nil, &domain.FetchError{URL: pageURL, StatusCode: http.StatusGatewayTimeout}
	}

	return f.read(ctx, pageURL, name+".html")
}

func (f *FixtureFetcher) read(ctx context.Context, pageURL, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}

	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &domain.FetchError{URL: pageURL, StatusCode: http.StatusNotFound}
	}
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}
	return raw, nil
}

func fixtureName(pageURL string) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		p = u.Path
	}
	name := path.Base(strings.TrimSuffix(p, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
