package apify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/bytedance/sonic"
)

const (
	// DefaultBaseURL is the Apify API v2 root.
	DefaultBaseURL = "https://api.apify.com/v2"
	// TokenEnv is read when no token is given.
	TokenEnv = "APIFY_API_TOKEN"
)

// Client talks to the Apify dataset API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// ClientOption is a function type to modify a Client
type ClientOption func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// NewClient creates a Client. An empty token falls back to $APIFY_API_TOKEN.
func NewClient(token string, opts ...ClientOption) *Client {
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOptions selects a page of dataset items.
type ListOptions struct {
	// Clean skips empty items and hidden fields
	Clean  bool
	Offset int
	// Limit of 0 lets the API choose the page size
	Limit int
}

// ItemsPage is one page of dataset items with the pagination headers.
type ItemsPage struct {
	Items  []map[string]any
	Total  int
	Offset int
	Limit  int
	Count  int
}

// ListItems fetches one page of items from a dataset.
func (c *Client) ListItems(ctx context.Context, datasetID string, opts ListOptions) (*ItemsPage, error) {
	source := "apify:" + datasetID

	query := url.Values{}
	query.Set("format", "json")
	if opts.Clean {
		query.Set("clean", "true")
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	endpoint := fmt.Sprintf("%s/datasets/%s/items?%s", c.baseURL, url.PathEscape(datasetID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, datasource.NewError(source, "ListItems", datasource.ErrCodeInvalidSource, "invalid dataset URL", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, datasource.NewError(source, "ListItems", datasource.ErrCodeInternal, "failed to call Apify API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, datasource.NewError(source, "ListItems", datasource.ErrCodeInternal, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, datasource.NewError(source, "ListItems", statusCode(resp.StatusCode),
			fmt.Sprintf("Apify API returned %s: %s", resp.Status, truncate(body, 200)), nil)
	}

	var items []map[string]any
	if err := sonic.Unmarshal(body, &items); err != nil {
		return nil, datasource.NewError(source, "ListItems", datasource.ErrCodeParse, "malformed dataset items", err)
	}

	page := &ItemsPage{
		Items:  items,
		Offset: headerInt(resp.Header, "X-Apify-Pagination-Offset", opts.Offset),
		Limit:  headerInt(resp.Header, "X-Apify-Pagination-Limit", opts.Limit),
		Count:  headerInt(resp.Header, "X-Apify-Pagination-Count", len(items)),
	}
	page.Total = headerInt(resp.Header, "X-Apify-Pagination-Total", page.Offset+page.Count)
	return page, nil
}

func statusCode(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return datasource.ErrCodeAccessDenied
	case http.StatusNotFound:
		return datasource.ErrCodeNotFound
	case http.StatusTooManyRequests:
		return datasource.ErrCodeRateLimitExceeded
	default:
		return datasource.ErrCodeInternal
	}
}

func headerInt(h http.Header, name string, fallback int) int {
	v, err := strconv.Atoi(h.Get(name))
	if err != nil {
		return fallback
	}
	return v
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
