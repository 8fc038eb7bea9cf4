package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Dentikka/deep-research/internal/store"
)

// ddgThrottle enforces a global rate limit of 1 query per second across all
// DuckDuckGo instances and goroutines.
var ddgThrottle struct {
	mu   sync.Mutex
	last time.Time
}

const (
	ddgEndpoint   = "https://lite.duckduckgo.com/lite/"
	ddgMaxRetries = 4
)

// DuckDuckGo scrapes the DuckDuckGo lite HTML interface. It needs no API
// key; the page carries no scores, so relevance decays with rank.
type DuckDuckGo struct {
	MaxResults int
	UserAgent  string
	endpoint   string
	retryDelay time.Duration
	client     *http.Client
}

func NewDuckDuckGo(maxResults int) *DuckDuckGo {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &DuckDuckGo{
		MaxResults: maxResults,
		UserAgent:  userAgent,
		endpoint:   ddgEndpoint,
		retryDelay: time.Second,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, subQuery, feedback string) ([]store.Finding, error) {
	query := composeQuery(subQuery, feedback)

	ddgThrottle.mu.Lock()
	if wait := time.Until(ddgThrottle.last.Add(time.Second)); wait > 0 {
		ddgThrottle.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		ddgThrottle.mu.Lock()
	}
	ddgThrottle.last = time.Now()
	ddgThrottle.mu.Unlock()

	form := url.Values{}
	form.Set("q", query)

	var resp *http.Response
	delay := d.retryDelay
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", d.UserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		if attempt >= ddgMaxRetries {
			return nil, fmt.Errorf("duckduckgo rate limited after %d attempts", attempt)
		}

		// Back off and retry on 429, doubling the delay up to 30s.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseLiteResults(string(body), d.MaxResults), nil
}

var (
	ddgLinkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	ddgLinkPatternAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	ddgSnippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// parseLiteResults extracts findings from the DuckDuckGo lite HTML, which
// lays results out as result-link anchors followed by result-snippet cells.
func parseLiteResults(html string, limit int) []store.Finding {
	matches := ddgLinkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = ddgLinkPatternAlt.FindAllStringSubmatch(html, -1)
	}
	snippets := ddgSnippetPattern.FindAllStringSubmatch(html, -1)

	var findings []store.Finding
	for i, match := range matches {
		if len(match) < 3 {
			continue
		}
		resultURL := strings.TrimSpace(match[1])
		title := cleanHTML(match[2])
		if resultURL == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			snippet = cleanHTML(snippets[i][1])
		}

		findings = append(findings, store.Finding{
			Source:  "duckduckgo",
			URL:     resultURL,
			Title:   title,
			Content: snippet,
			Score:   1.0 / float64(1+len(findings)),
		})
		if len(findings) >= limit {
			break
		}
	}
	return findings
}

// cleanHTML strips tags and decodes the entities that show up in results.
func cleanHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}
