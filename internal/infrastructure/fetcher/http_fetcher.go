package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/ports"
)

// HTTPFetcher reads pages over the network with a fixed header set.
// It does not retry; a non-2xx answer is returned as *domain.FetchError.
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a client sending headers on every request.
// A zero timeout leaves requests bounded only by ctx.
func NewHTTPFetcher(headers map[string]string, timeout time.Duration, log *slog.Logger) *HTTPFetcher {
	client := resty.New().
		SetHeaders(headers).
		SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPFetcher{client: client, logger: log}
}

// FetchListPage downloads the chart page.
func (f *HTTPFetcher) FetchListPage(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url)
}

// FetchDetailPage downloads a title page.
func (f *HTTPFetcher) FetchDetailPage(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url)
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	started := time.Now()
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}

	f.debug("page fetched", "url", url, "status", res.StatusCode(), "elapsed", time.Since(started))

	if !res.IsSuccess() {
		return nil, &domain.FetchError{URL: url, StatusCode: res.StatusCode()}
	}

	return res.Body(), nil
}

func (f *HTTPFetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
