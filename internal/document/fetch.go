package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/aiagentrag/ragserver/internal/log"
)

// Fetch resource limits.
const (
	fetchTimeout     = 30 * time.Second
	maxResponseBytes = 10 * 1024 * 1024 // 10MB
)

// Page holds the extracted content of a fetched web page.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Fetcher downloads web pages and extracts their readable text.
type Fetcher struct {
	client *http.Client
	logger log.Logger
}

// NewFetcher creates a Fetcher with a shared HTTP client.
// A nil client gets a default one with a 30-second timeout.
func NewFetcher(client *http.Client, logger log.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch downloads the page at rawURL and extracts its main article
// text with go-readability. Response bodies larger than
// maxResponseBytes are rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", u, maxResponseBytes)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	f.logger.Debug("fetched page", "url", u.String(), "title", article.Title,
		"content_length", len(article.TextContent))

	return &Page{
		URL:     u.String(),
		Title:   article.Title,
		Content: normalizeWhitespace(article.TextContent),
	}, nil
}
