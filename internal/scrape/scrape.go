// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches web pages and extracts their readable text.
// Failure reasons are phrased for end users: they travel verbatim into
// result records instead of aborting the pipeline.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	defaultMaxAttempts   = 2
	defaultMinContentLen = 100
	defaultMaxContentLen = 15000
	defaultConcurrency   = 3
)

// retryDelay is the pause before re-attempting a timed-out fetch. Tests
// override this to avoid real sleeps.
var retryDelay = 1 * time.Second

// skipExtensions marks URLs that point at non-HTML payloads; they are
// rejected before any network call.
var skipExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".mp4", ".zip",
	".doc", ".docx", ".ppt", ".pptx",
}

// contentSelectors is probed in order for the main content container.
// First match wins; the document body is the fallback.
var contentSelectors = []string{"main", "article", "#content", ".content", "#main", ".main"}

// chromeSelector matches page chrome removed before text extraction.
const chromeSelector = "script, style, nav, footer, header, aside, noscript, iframe"

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	ellipsisRuns   = regexp.MustCompile(`\.{2,}`)
)

// Extract fetches rawURL and returns its cleaned visible text. A timed
// out fetch is retried once; every other failure is final. The returned
// error text is the user-facing reason the page was rejected.
func Extract(ctx context.Context, client *http.Client, rawURL string, cfg types.ScrapeConfig) (string, error) {
	if !validURL(rawURL) {
		return "", errors.New("Invalid URL format.")
	}
	if shouldSkip(rawURL) {
		return "", fmt.Errorf("Skipping URL that may contain non-HTML content: %s", rawURL)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 0; ; attempt++ {
		content, retryable, err := fetchOnce(ctx, client, rawURL, cfg)
		if err == nil {
			return content, nil
		}
		if !retryable || attempt == maxAttempts-1 {
			return "", err
		}

		// Only timeouts earn another attempt.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// fetchOnce performs a single fetch-and-extract pass. retryable is true
// only when the request timed out.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string, cfg types.ScrapeConfig) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("Request error: %v", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		switch {
		case isTimeout(err):
			return "", true, errors.New("Request timed out.")
		case isTooManyRedirects(err):
			return "", false, errors.New("Too many redirects.")
		default:
			return "", false, fmt.Errorf("Request error: %v", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") {
		return "", false, fmt.Errorf("Not an HTML page. Content-Type: %s", contentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", true, errors.New("Request timed out.")
		}
		return "", false, fmt.Errorf("Request error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("Failed to parse page: %v", err)
	}

	text := extractMainContent(doc)
	minLen := cfg.MinContentLen
	if minLen <= 0 {
		minLen = defaultMinContentLen
	}
	if len(text) < minLen {
		return "", false, errors.New("Content too short or empty.")
	}

	maxLen := cfg.MaxContentLen
	if maxLen <= 0 {
		maxLen = defaultMaxContentLen
	}
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text, false, nil
}

// extractMainContent removes page chrome, locates the most plausible
// content container, and returns its normalized visible text.
func extractMainContent(doc *goquery.Document) string {
	doc.Find(chromeSelector).Remove()

	var root *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			root = s
			break
		}
	}
	if root == nil {
		if body := doc.Find("body").First(); body.Length() > 0 {
			root = body
		} else {
			root = doc.Selection
		}
	}

	text := nodeText(root)
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = ellipsisRuns.ReplaceAllString(text, "...")
	return strings.TrimSpace(text)
}

// nodeText joins the text nodes under s with newlines, so block
// boundaries survive until whitespace normalization.
func nodeText(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

func validURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func shouldSkip(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func isTooManyRedirects(err error) bool {
	// net/http reports the redirect limit only through the error text.
	return err != nil && strings.Contains(err.Error(), "stopped after")
}

// Result is the outcome of one Extract call within a batch.
type Result struct {
	Content string
	Err     error
}

// ExtractAll fetches every URL with a bounded worker pool and returns
// the outcomes keyed by URL. The call always waits for the whole batch:
// individual failures land in the map and never cancel other fetches.
// Progress is reported per URL on w.
func ExtractAll(ctx context.Context, client *http.Client, urls []string, cfg types.ScrapeConfig, w io.Writer) map[string]Result {
	workers := cfg.Concurrency
	if workers <= 0 {
		workers = defaultConcurrency
	}

	var mu sync.Mutex
	results := make(map[string]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			content, err := Extract(ctx, client, u, cfg)

			// The mutex also serializes progress writes; w is shared.
			mu.Lock()
			results[u] = Result{Content: content, Err: err}
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			} else {
				fmt.Fprintf(w, "scraped: %s (%d chars)\n", u, len(content))
			}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait is only the join barrier.
	_ = g.Wait()

	return results
}
