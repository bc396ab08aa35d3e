package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://store.steampowered.com"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultTimeout = 20 * time.Second
)

// Client talks to the public Steam store: the search page and the review
// endpoint.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute (URL = %s)", baseURL)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

// AppURL is the store page of an application.
func (c *Client) AppURL(appID string) string {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return ""
	}

	return c.endpoint("app/" + url.PathEscape(appID) + "/")
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	return u.String()
}

// get performs a GET and hands the body to read. The body is always closed.
func (c *Client) get(
	ctx context.Context,
	operation string,
	rawURL string,
	query url.Values,
	read func(io.Reader) error,
) error {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req) //nolint:gosec // Steam store URL
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", operation)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	if read == nil {
		return errors.New("reader is nil")
	}

	return read(resp.Body)
}
