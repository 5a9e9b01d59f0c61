// Package esco is a client for the ESCO skills and occupations taxonomy.
package esco

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL          = "https://ec.europa.eu/esco/api"
	userAgent       = "spigell/talentbridge"
	defaultLanguage = "en"
	// The API returns ten results per search page; only the first page is used.
	searchLimit = "10"

	defaultMaxRetries  = 3
	defaultConcurrency = 8
	defaultTimeout     = 15 * time.Second
)

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	APIURL   string
	Language string
	// RateLimit is the number of requests per second; 0 disables limiting.
	RateLimit   float64
	MaxRetries  int
	Concurrency int
	Timeout     time.Duration
}

// OccupationCache stores the occupations linked to a skill.
type OccupationCache interface {
	Get(ctx context.Context, skillURI string) ([]string, bool, error)
	Put(ctx context.Context, skillURI string, occupationURIs []string) error
}

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Language   string

	limiter     *rate.Limiter
	maxRetries  int
	concurrency int
	cache       OccupationCache
}

func New(logger *zap.Logger, cfg Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		logger:      logger,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
		UserAgent:   userAgent,
		APIURL:      apiURL,
		Language:    defaultLanguage,
		maxRetries:  defaultMaxRetries,
		concurrency: defaultConcurrency,
	}

	if cfg.APIURL != "" {
		c.APIURL = cfg.APIURL
	}
	if cfg.Language != "" {
		c.Language = cfg.Language
	}
	if cfg.Timeout > 0 {
		c.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries > 0 {
		c.maxRetries = cfg.MaxRetries
	}
	if cfg.Concurrency > 0 {
		c.concurrency = cfg.Concurrency
	}
	if cfg.RateLimit > 0 {
		burst := max(1, int(cfg.RateLimit))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c
}

// WithCache makes skill occupation lookups go through cache first.
func (c *Client) WithCache(cache OccupationCache) *Client {
	c.cache = cache
	return c
}
