// Package fetch retrieves player bundles: it scrapes the player URL out of a
// watch page and downloads the bundle itself, with a short-lived in-memory
// cache so repeated extractions against the same player version hit the
// network once.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sigcarve/sigcarve/internal/core"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	baseURL   = "https://www.youtube.com"

	bundleTTL  = 10 * time.Minute
	maxRetries = 2
)

var (
	jsURLRe         = regexp.MustCompile(`"jsUrl":"([^"]+)"`)
	playerVersionRe = regexp.MustCompile(`/s/player/([0-9a-f]{8})`)
)

type cacheEntry struct {
	body  string
	expAt time.Time
}

// Client downloads watch pages and player bundles. The zero value is not
// usable; construct with NewClient.
type Client struct {
	http *http.Client
	base string

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
		base:  baseURL,
		cache: make(map[string]cacheEntry),
	}
}

// NewClientWith wraps an existing HTTP client and base URL. Used by tests and
// by callers that already carry a configured transport.
func NewClientWith(hc *http.Client, base string) *Client {
	return &Client{http: hc, base: base, cache: make(map[string]cacheEntry)}
}

// FetchPage downloads a watch page body.
func (c *Client) FetchPage(pageURL string) (string, error) {
	body, err := c.get(pageURL, "text/html,application/xhtml+xml,*/*;q=0.8")
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	return body, nil
}

// PlayerURLFromPage scrapes the "jsUrl" field out of a watch page body and
// returns the absolute bundle URL.
func (c *Client) PlayerURLFromPage(page string) (string, error) {
	m := jsURLRe.FindStringSubmatch(page)
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("no player reference in page")
	}

	jsURL := strings.ReplaceAll(m[1], `\/`, `/`)
	switch {
	case strings.HasPrefix(jsURL, "//"):
		return "https:" + jsURL, nil
	case strings.HasPrefix(jsURL, "/"):
		return c.base + jsURL, nil
	}
	return jsURL, nil
}

// FetchBundle downloads the player bundle at playerURL, serving from cache
// when a fresh copy is already held.
func (c *Client) FetchBundle(playerURL string) (*core.PlayerBundle, error) {
	c.mu.Lock()
	if e, ok := c.cache[playerURL]; ok && time.Now().Before(e.expAt) {
		body := e.body
		c.mu.Unlock()
		return &core.PlayerBundle{URL: playerURL, Version: PlayerVersion(playerURL), Body: body}, nil
	}
	c.mu.Unlock()

	body, err := c.get(playerURL, "application/javascript, */*")
	if err != nil {
		return nil, fmt.Errorf("fetching bundle: %w", err)
	}
	if body == "" {
		return nil, fmt.Errorf("empty bundle from %s", playerURL)
	}

	c.mu.Lock()
	c.cache[playerURL] = cacheEntry{body: body, expAt: time.Now().Add(bundleTTL)}
	c.mu.Unlock()

	return &core.PlayerBundle{URL: playerURL, Version: PlayerVersion(playerURL), Body: body}, nil
}

// get performs one GET with browser-like headers, retrying transient
// failures with exponential backoff.
func (c *Client) get(url, accept string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", accept)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return "", fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return string(body), nil
	}
	return "", fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// PlayerVersion pulls the 8-hex version token out of a player URL, or ""
// when the URL does not carry one.
func PlayerVersion(playerURL string) string {
	if m := playerVersionRe.FindStringSubmatch(playerURL); len(m) == 2 {
		return m[1]
	}
	return ""
}
