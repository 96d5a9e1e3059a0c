package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"MovieCatalog/internal/domain"
)

func TestHTTPFetcherSendsHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "catalog-test" || r.Header.Get("Accept-Language") != "en-US" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html>chart</html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(map[string]string{
		"User-Agent":      "catalog-test",
		"Accept-Language": "en-US",
	}, 5*time.Second, nil)

	body, err := f.FetchListPage(context.Background(), server.URL+"/chart")
	require.NoError(t, err)
	require.Equal(t, "<html>chart</html>", string(body))
}

func TestHTTPFetcherClassifiesStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/title/slow":
			w.WriteHeader(http.StatusGatewayTimeout)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := NewHTTPFetcher(nil, 5*time.Second, nil)
	ctx := context.Background()

	_, err := f.FetchDetailPage(ctx, server.URL+"/title/slow")
	var ferr *domain.FetchError
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, http.StatusGatewayTimeout, ferr.StatusCode)
	require.True(t, ferr.IsGatewayTimeout())

	_, err = f.FetchDetailPage(ctx, server.URL+"/title/broken")
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, http.StatusInternalServerError, ferr.StatusCode)
	require.False(t, ferr.IsGatewayTimeout())
}

func TestHTTPFetcherTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	f := NewHTTPFetcher(nil, time.Second, nil)
	_, err := f.FetchListPage(context.Background(), addr)

	var ferr *domain.FetchError
	require.True(t, errors.As(err, &ferr))
	require.Zero(t, ferr.StatusCode)
	require.Error(t, ferr.Err)
}

func TestFixtureFetcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ListFixture), []byte("chart"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tt1.html"), []byte("title one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tt2.504"), nil, 0o600))

	f := NewFixtureFetcher(dir)
	ctx := context.Background()

	body, err := f.FetchListPage(ctx, "https://www.imdb.com/chart/moviemeter/")
	require.NoError(t, err)
	require.Equal(t, "chart", string(body))

	body, err = f.FetchDetailPage(ctx, "https://www.imdb.com/title/tt1")
	require.NoError(t, err)
	require.Equal(t, "title one", string(body))

	var ferr *domain.FetchError

	_, err = f.FetchDetailPage(ctx, "https://www.imdb.com/title/tt2/")
	require.True(t, errors.As(err, &ferr))
	require.True(t, ferr.IsGatewayTimeout())

	_, err = f.FetchDetailPage(ctx, "https://www.imdb.com/title/tt3")
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, http.StatusNotFound, ferr.StatusCode)
}
