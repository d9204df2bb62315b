package usajobs

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/retry"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

type response struct {
	SearchResult *searchResult `json:"SearchResult"`
}

type searchResult struct {
	SearchResultCount    int              `json:"SearchResultCount"`
	SearchResultCountAll int              `json:"SearchResultCountAll"`
	SearchResultItems    []map[string]any `json:"SearchResultItems"`
	UserArea             struct {
		// NumberOfPages usually comes back as a string.
		NumberOfPages any `json:"NumberOfPages"`
	} `json:"UserArea"`
}

func (r *searchResult) total() int {
	if r.SearchResultCountAll > 0 {
		return r.SearchResultCountAll
	}
	return r.SearchResultCount
}

func (r *searchResult) pages() int {
	switch v := r.UserArea.NumberOfPages.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 1
}

// getItems requests pages starting from the first one until the catalog runs
// out of pages or MaxPages is reached.
func (c *Client) getItems(ctx context.Context, q url.Values) (int, []map[string]any, error) {
	var items []map[string]any

	q.Set("Page", "1")
	resp, err := c.getPage(ctx, q)
	if err != nil {
		return 0, nil, err
	}

	if resp.SearchResult == nil {
		c.logger.Warn("malformed response from USAJOBS: SearchResult is missing")
		return 0, nil, nil
	}

	total := resp.SearchResult.total()
	pages := resp.SearchResult.pages()

	c.logger.Debug("got response from USAJOBS",
		zap.Int("total", total),
		zap.Int("pages", pages),
		zap.Int("max pages", c.MaxPages),
	)

	items = append(items, resp.SearchResult.SearchResultItems...)

	for page := 2; page <= min(pages, c.MaxPages); page++ {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", page-1, pages),
		))

		q.Set("Page", strconv.Itoa(page))
		resp, err = c.getPage(ctx, q)
		if err != nil {
			return 0, nil, err
		}
		if resp.SearchResult == nil {
			c.logger.Warn("malformed response from USAJOBS: SearchResult is missing", zap.Int("page", page))
			break
		}

		items = append(items, resp.SearchResult.SearchResultItems...)
	}

	return total, items, nil
}

// getPage fetches one page, retrying transient failures with the client policy.
func (c *Client) getPage(ctx context.Context, q url.Values) (*response, error) {
	policy := c.policy
	policy.Notify = func(err error, attempt int, delay time.Duration) {
		c.logger.Warn("USAJOBS request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	return retry.Get(ctx, policy, func(ctx context.Context) (*response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
		if err != nil {
			return nil, err
		}

		req = c.setHeaders(req)
		req.URL.RawQuery = q.Encode()

		resp, err := c.request(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		return c.parseResponse(resp)
	})
}

func (c *Client) parseResponse(resp *http.Response) (*response, error) {
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var out response
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		c.logger.Warn("malformed response from USAJOBS", zap.Error(err))
		return &response{}, nil
	}

	return &out, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Host = c.Host
	req.Header.Set("Authorization-Key", c.key)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}
