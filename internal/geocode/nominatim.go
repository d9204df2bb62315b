package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/retry"
	"github.com/spigell/fedjobs/internal/utils"
)

const (
	nominatimURL       = "https://nominatim.openstreetmap.org/search"
	nominatimUserAgent = "fed-career-map"
	// Nominatim usage policy allows at most one request per second.
	nominatimInterval = time.Second
)

type NominatimOptions struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	// MinInterval is the minimum time between two requests.
	MinInterval time.Duration
}

// Nominatim queries the OpenStreetMap search API.
type Nominatim struct {
	HTTPClient *http.Client
	URL        string
	UserAgent  string

	logger      *zap.Logger
	minInterval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatim(logger *zap.Logger, opts NominatimOptions) *Nominatim {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.URL == "" {
		opts.URL = nominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = nominatimUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MinInterval < 0 {
		opts.MinInterval = 0
	}

	return &Nominatim{
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		URL:         opts.URL,
		UserAgent:   opts.UserAgent,
		logger:      logger,
		minInterval: opts.MinInterval,
		now:         time.Now,
	}
}

// DefaultNominatimOptions follow the public instance usage policy.
func DefaultNominatimOptions() NominatimOptions {
	return NominatimOptions{
		URL:         nominatimURL,
		UserAgent:   nominatimUserAgent,
		Timeout:     5 * time.Second,
		MinInterval: nominatimInterval,
	}
}

func (n *Nominatim) Resolve(ctx context.Context, address string) (*geo.Coordinates, error) {
	if err := n.throttle(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.URL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	n.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(places) == 0 {
		return nil, nil
	}

	coords := geo.ParsePair(places[0].Lat, places[0].Lon)
	if coords != nil {
		n.logger.Debug("address resolved",
			zap.String("address", address),
			zap.String("display_name", places[0].DisplayName),
			zap.Stringer("coordinates", coords),
		)
	}
	return coords, nil
}

func (n *Nominatim) throttle(ctx context.Context) error {
	if n.minInterval <= 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.last.IsZero() {
		if wait := n.minInterval - n.now().Sub(n.last); wait > 0 {
			if err := utils.WaitFor(ctx, wait); err != nil {
				return err
			}
		}
	}
	n.last = n.now()
	return nil
}
