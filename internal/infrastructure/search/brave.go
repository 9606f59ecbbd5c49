package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"MediaCurator/internal/config"
	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// BraveClient queries the Brave Search API for context snippets.
type BraveClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Searcher = (*BraveClient)(nil)

// NewBraveClient builds a client from configuration. Callers should skip
// construction entirely when no API key is configured.
func NewBraveClient(cfg config.SearchConfig) *BraveClient {
	return &BraveClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search runs a web search and returns up to max results.
func (c *BraveClient) Search(ctx context.Context, query string, max int) ([]domain.SearchResult, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return nil, fmt.Errorf("search client misconfigured")
	}
	if max <= 0 {
		max = 3
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	values := endpoint.Query()
	values.Set("q", query)
	values.Set("count", strconv.Itoa(max))
	values.Set("text_decorations", "false")
	values.Set("search_lang", "de")
	values.Set("country", "DE")
	endpoint.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave api error: %s", resp.Status)
	}

	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, max)
	for _, r := range parsed.Web.Results {
		if len(results) >= max {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			Snippet: r.Description,
			URL:     r.URL,
		})
	}
	return results, nil
}
