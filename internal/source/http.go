package source

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"aram-stats/internal/constants"
	"aram-stats/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// HTTPFetcher downloads CSV exports published over HTTP.
type HTTPFetcher struct {
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewHTTPFetcher(logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     8,
			ReadTimeout:         constants.ExternalFetchTimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
			MaxResponseBodySize: constants.MaxDownloadBytes,
		},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*domain.RawTable, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/csv, */*")
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if ok {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
	} else {
		if err := f.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("failed to decode body of %s: %w", url, err)
	}

	f.logger.Info().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("dataset downloaded")

	return ReadCSV(bytes.NewReader(body))
}
