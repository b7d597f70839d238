// Package nominatim geocodes Dutch postal codes through a Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
)

// Defaults match the public Nominatim usage policy: one request per second
// and an identifying User-Agent.
const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "AmsterdamSchoolChoice/1.0 (geocoding zip)"
	DefaultSuffix    = "Amsterdam Netherlands"
	DefaultTimeout   = 10 * time.Second
)

const maxBodyBytes = 1 << 20

// Config holds the geocoder settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL           string
	UserAgent         string
	Suffix            string
	CountryCodes      string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Client is a rate-limited Nominatim search client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	suffix    string
	countries string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates a Nominatim client.
func New(cfg *Config) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		suffix:    cfg.Suffix,
		countries: cfg.CountryCodes,
		logger:    cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.suffix == "" {
		c.suffix = DefaultSuffix
	}
	if c.countries == "" {
		c.countries = "nl"
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}

	rps, burst := cfg.RequestsPerSecond, cfg.Burst
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinate of a normalized postal code.
// No hit yields domain.ErrPostalCodeNotFound; any transport or upstream
// failure yields domain.ErrGeocoderUnavailable.
func (c *Client) Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("rate_limited").Inc()
		return geo.Coordinate{}, fmt.Errorf("%w: %w: %w", domain.ErrGeocoderUnavailable, domain.ErrRateLimited, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(postalCode), http.NoBody)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GeocodeRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return geo.Coordinate{}, c.fail("transport", postalCode, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.GeocodeRequestsTotal.WithLabelValues("rate_limited").Inc()
		return geo.Coordinate{}, fmt.Errorf("upstream status %d: %w: %w",
			resp.StatusCode, domain.ErrGeocoderUnavailable, domain.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return geo.Coordinate{}, c.fail("status", postalCode, fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&places); err != nil {
		return geo.Coordinate{}, c.fail("decode", postalCode, err)
	}
	if len(places) == 0 {
		metrics.GeocodeRequestsTotal.WithLabelValues("not_found").Inc()
		return geo.Coordinate{}, domain.ErrPostalCodeNotFound
	}

	coord, err := places[0].coordinate()
	if err != nil {
		return geo.Coordinate{}, c.fail("decode", postalCode, err)
	}
	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	return coord, nil
}

func (c *Client) searchURL(postalCode string) string {
	q := url.Values{}
	q.Set("q", postalCode+" "+c.suffix)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("countrycodes", c.countries)
	return c.baseURL + "/search?" + q.Encode()
}

func (c *Client) fail(stage, postalCode string, err error) error {
	metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
	c.logger.Warn("Geocoder request failed",
		zap.String("stage", stage),
		zap.String("postal_code", postalCode),
		zap.Error(err),
	)
	return fmt.Errorf("geocode %s: %w: %w", postalCode, domain.ErrGeocoderUnavailable, err)
}

func (p place) coordinate() (geo.Coordinate, error) {
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		return geo.Coordinate{}, fmt.Errorf("parse coordinate: %w", err)
	}
	c, ok := geo.NewCoordinate(lat, lon)
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("coordinate out of range: %s,%s", p.Lat, p.Lon)
	}
	return c, nil
}
