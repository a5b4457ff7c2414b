// Package nominatim wraps the OpenStreetMap search API for forward
// geocoding of free-text place queries.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ssbor/jobmap/internal/entities"
	"golang.org/x/time/rate"
)

const (
	searchURL        = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "jobmap/1.0 (job offer distance filter)"

	// more than one candidate so proximity disambiguation has a choice
	resultLimit = 5
)

// The country restriction is applied only when the query itself hints at
// the target country; foreign addresses stay unrestricted.
var czHintRe = regexp.MustCompile(`(?i)\bCzechia\b|\bCzech Republic\b|\bČesko\b`)

type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	userAgent   string
	bias        entities.Coordinate
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		bias:       entities.BiasPoint,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetUserAgent(userAgent string) {
	c.userAgent = userAgent
}

// Geocode resolves a free-text query to a coordinate, picking the
// candidate closest to the bias point. A nil coordinate with nil error
// means the service answered but found nothing usable; the caller may
// cache that as a permanent negative. Transient refusals are reported as
// ErrThrottled or ErrForbidden.
func (c *Client) Geocode(ctx context.Context, query string) (*entities.Coordinate, error) {

	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("q", query)
	params.Set("accept-language", "cs")
	if czHintRe.MatchString(query) {
		params.Set("countrycodes", "cz")
	}

	body, err := c.sendRequest(ctx, searchURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %v", err)
	}

	return c.pickClosest(candidates), nil
}

// pickClosest returns the parseable candidate nearest the bias point.
// Non-numeric coordinates are discarded, not treated as errors.
func (c *Client) pickClosest(candidates []candidate) *entities.Coordinate {
	var best *entities.Coordinate
	bestKm := 0.0

	for _, cand := range candidates {
		lat, latErr := strconv.ParseFloat(cand.Lat, 64)
		lon, lonErr := strconv.ParseFloat(cand.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		coord := entities.Coordinate{Lat: lat, Lon: lon}
		km := c.bias.DistanceKm(coord)
		if best == nil || km < bestKm {
			best, bestKm = &coord, km
		}
	}
	return best
}

func (c *Client) sendRequest(ctx context.Context, requestURL string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading response body: %v", err)
		}
		return body, nil

	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, errors.Wrapf(ErrThrottled, "status %v", resp.StatusCode)

	case http.StatusForbidden:
		return nil, errors.Wrapf(ErrForbidden, "status %v", resp.StatusCode)

	default:
		return nil, fmt.Errorf("request failed with status %v", resp.StatusCode)
	}
}
