package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dentikka/deep-research/internal/store"
)

// Tavily calls the Tavily search API, which returns scored results.
type Tavily struct {
	APIKey     string
	Depth      string
	MaxResults int
	client     *http.Client
}

func NewTavily(apiKey, depth string, maxResults int) *Tavily {
	if depth == "" {
		depth = "advanced"
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Tavily{
		APIKey:     apiKey,
		Depth:      depth,
		MaxResults: maxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Tavily) Search(ctx context.Context, subQuery, feedback string) ([]store.Finding, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: api key is missing")
	}

	body := map[string]any{
		"query":          composeQuery(subQuery, feedback),
		"api_key":        t.APIKey,
		"search_depth":   t.Depth,
		"max_results":    t.MaxResults,
		"include_answer": false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.tavily.com/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title      string  `json:"title"`
			URL        string  `json:"url"`
			Content    string  `json:"content"`
			Score      float64 `json:"score"`
			RawContent string  `json:"raw_content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	findings := make([]store.Finding, 0, len(response.Results))
	for _, r := range response.Results {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		f := store.Finding{
			Source:  "tavily",
			URL:     r.URL,
			Title:   title,
			Content: r.Content,
			Score:   r.Score,
		}
		if r.RawContent != "" {
			f.Metadata = map[string]any{"raw_content": r.RawContent}
		}
		findings = append(findings, f)
	}
	return findings, nil
}
