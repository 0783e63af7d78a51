package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/24kshah/nemhem-ai/services"
)

// DefaultTavilyURL is the Tavily search endpoint
const DefaultTavilyURL = "https://api.tavily.com/search"

const (
	redditSite       = "reddit.com"
	redditMaxResults = 5

	youtubeSite       = "youtube.com"
	youtubeMaxResults = 3
)

// LinkResult is one Tavily hit
type LinkResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// TavilyClient runs site-restricted searches through Tavily
type TavilyClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewTavilyClient creates a new Tavily client. An empty endpoint uses DefaultTavilyURL.
func NewTavilyClient(apiKey, endpoint string, httpClient *http.Client) *TavilyClient {
	if endpoint == "" {
		endpoint = DefaultTavilyURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &TavilyClient{apiKey: strings.TrimSpace(apiKey), endpoint: endpoint, httpClient: httpClient}
}

// Configured reports whether an API key is set
func (c *TavilyClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Reddit searches reddit.com for query
func (c *TavilyClient) Reddit(ctx context.Context, query string) ([]LinkResult, error) {
	return c.SearchSite(ctx, query, redditSite, redditMaxResults)
}

// YouTube searches youtube.com for query
func (c *TavilyClient) YouTube(ctx context.Context, query string) ([]LinkResult, error) {
	return c.SearchSite(ctx, query, youtubeSite, youtubeMaxResults)
}

// SearchSite runs an advanced search restricted to site
func (c *TavilyClient) SearchSite(ctx context.Context, query, site string, maxResults int) ([]LinkResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tavily: %w", services.ErrSearchNotConfigured)
	}

	payload := struct {
		Query         string `json:"query"`
		SearchDepth   string `json:"search_depth"`
		IncludeAnswer bool   `json:"include_answer"`
		MaxResults    int    `json:"max_results"`
	}{
		Query:         query + " site:" + site,
		SearchDepth:   "advanced",
		IncludeAnswer: false,
		MaxResults:    maxResults,
	}

	var resp struct {
		Results []LinkResult `json:"results"`
	}
	if err := postJSON(ctx, c.httpClient, "tavily", c.endpoint, c.apiKey, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
