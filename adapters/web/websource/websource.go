package websource

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/kbloader/adapters/jsonloader"
	"github.com/Abraxas-365/kbloader/datasource"
)

// URLSource is a jsonloader.Source fetching its JSON over HTTP GET.
type URLSource struct {
	url    string
	client *http.Client
}

func NewURLSource(url string, client *http.Client) *URLSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &URLSource{url: url, client: client}
}

func (s *URLSource) Name() string {
	return s.url
}

func (s *URLSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &datasource.DataSourceError{
			Source:  s.url,
			Op:      "Open",
			Err:     err,
			Code:    datasource.ErrCodeInvalidSource,
			Message: "invalid URL",
		}
	}
	req.Header.Set("Accept", "application/json, application/x-ndjson")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &datasource.DataSourceError{
			Source:  s.url,
			Op:      "Open",
			Err:     err,
			Code:    datasource.ErrCodeFileAccess,
			Message: "failed to fetch URL",
		}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &datasource.DataSourceError{
			Source:  s.url,
			Op:      "Open",
			Code:    statusCode(resp.StatusCode),
			Message: "failed to fetch URL: " + resp.Status,
		}
	}

	return resp.Body, nil
}

func statusCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return datasource.ErrCodeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return datasource.ErrCodeAccessDenied
	case http.StatusTooManyRequests:
		return datasource.ErrCodeRateLimitExceeded
	default:
		return datasource.ErrCodeFileAccess
	}
}

// WebSource loads documents from JSON endpoints, running the same query over
// every URL. Sequence numbers restart for each URL.
type WebSource struct {
	urls   []string
	query  string
	client *http.Client
	opts   []jsonloader.Option
}

func NewWebSource(urls []string, timeout time.Duration, query string, opts ...jsonloader.Option) *WebSource {
	return &WebSource{
		urls:  urls,
		query: query,
		client: &http.Client{
			Timeout: timeout,
		},
		opts: opts,
	}
}

func (w *WebSource) Load(ctx context.Context, opts ...datasource.Option) ([]datasource.Document, error) {
	options := datasource.NewLoadOptions(opts...)

	var documents []datasource.Document

	for _, url := range w.urls {
		if options.Full(len(documents)) {
			break
		}

		loader, err := jsonloader.New(NewURLSource(url, w.client), w.query, w.opts...)
		if err != nil {
			return nil, err
		}

		remaining := opts
		if options.MaxItems > 0 {
			remaining = append(append([]datasource.Option{}, opts...), datasource.WithMaxItems(options.MaxItems-len(documents)))
		}

		docs, err := loader.Load(ctx, remaining...)
		if err != nil {
			return nil, err
		}
		documents = append(documents, docs...)
	}

	return documents, nil
}
