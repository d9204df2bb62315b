// Package usajobs is a client for the USAJOBS Search API.
package usajobs

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/retry"
)

const (
	apiURL  = "https://data.usajobs.gov/api/Search"
	apiHost = "data.usajobs.gov"
	// Max value accepted by the API.
	maxResultsPerPage = 500
	defaultPerPage    = 25
)

type Options struct {
	APIURL string
	Host   string
	APIKey string

	// Email is sent as the User-Agent, as the API registration requires.
	Email string

	Timeout        time.Duration
	ResultsPerPage int
	MaxPages       int
	Retry          retry.Policy
}

type Client struct {
	key        string
	logger     *zap.Logger
	policy     retry.Policy
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Host       string
	PerPage    int
	MaxPages   int
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.APIURL == "" {
		opts.APIURL = apiURL
	}
	if opts.Host == "" {
		opts.Host = apiHost
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.ResultsPerPage <= 0 {
		opts.ResultsPerPage = defaultPerPage
	}
	if opts.ResultsPerPage > maxResultsPerPage {
		opts.ResultsPerPage = maxResultsPerPage
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}

	return &Client{
		key:    opts.APIKey,
		logger: logger,
		policy: opts.Retry,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		UserAgent: opts.Email,
		APIURL:    opts.APIURL,
		Host:      opts.Host,
		PerPage:   opts.ResultsPerPage,
		MaxPages:  opts.MaxPages,
	}
}

func (c *Client) Search(ctx context.Context, params *SearchParams) (*SearchResult, error) {
	return c.search(ctx, params)
}

// Ping runs a minimal search to verify credentials and connectivity. It
// returns the number of listings the catalog reports for the probe query.
func (c *Client) Ping(ctx context.Context) (int, error) {
	q := buildParams(&SearchParams{Keyword: "police", ResultsPerPage: 1})

	response, err := c.getPage(ctx, q)
	if err != nil {
		return 0, err
	}
	if response.SearchResult == nil {
		return 0, nil
	}
	return response.SearchResult.total(), nil
}
