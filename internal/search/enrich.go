package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dentikka/deep-research/internal/store"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// Enricher replaces finding snippets with readable article text fetched
// from each URL, the way a researcher would open the links by hand. Fetch
// failures keep the original snippet.
type Enricher struct {
	Inner     Provider
	UserAgent string
	MaxChars  int
	client    *http.Client
	sanitize  *bluemonday.Policy
}

func NewEnricher(inner Provider) *Enricher {
	return &Enricher{
		Inner:     inner,
		UserAgent: userAgent,
		MaxChars:  10000,
		client:    &http.Client{Timeout: 30 * time.Second},
		sanitize:  bluemonday.StrictPolicy(),
	}
}

func (e *Enricher) Search(ctx context.Context, subQuery, feedback string) ([]store.Finding, error) {
	findings, err := e.Inner.Search(ctx, subQuery, feedback)
	if err != nil {
		return nil, err
	}

	for i := range findings {
		text, err := e.fetch(ctx, findings[i].URL)
		if err != nil || text == "" {
			continue
		}
		if findings[i].Metadata == nil {
			findings[i].Metadata = make(map[string]any)
		}
		findings[i].Metadata["snippet"] = findings[i].Content
		findings[i].Content = text
	}
	return findings, nil
}

func (e *Enricher) fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", err
	}

	text := e.sanitize.Sanitize(article.TextContent)
	if len(text) > e.MaxChars {
		cut := e.MaxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n... (content truncated) ..."
	}
	return strings.TrimSpace(text), nil
}
