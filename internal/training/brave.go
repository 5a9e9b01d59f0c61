package training

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spigell/talentbridge/internal/ai"
	"go.uber.org/zap"
)

const (
	braveURL    = "https://api.search.brave.com/res/v1/web/search"
	resultCount = "10"
)

// Brave is a client for the Brave web search API.
type Brave struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func NewBrave(apiKey string, logger *zap.Logger) *Brave {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Brave{
		apiKey:     strings.TrimSpace(apiKey),
		logger:     logger,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		APIURL:     braveURL,
	}
}

type braveResponse struct {
	Web struct {
		Results []ai.SearchResult `json:"results"`
	} `json:"web"`
}

// Search returns the first page of web results. Without an API key it
// returns nothing.
func (b *Brave) Search(ctx context.Context, query string) ([]ai.SearchResult, error) {
	if b.apiKey == "" {
		b.logger.Debug("brave api key is not configured, skipping web search")
		return []ai.SearchResult{}, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("count", resultCount)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave search: bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	var decoded braveResponse
	if err := json.NewDecoder(reader).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("brave search: decoding response: %w", err)
	}

	results := make([]ai.SearchResult, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		results = append(results, r)
	}

	return results, nil
}
