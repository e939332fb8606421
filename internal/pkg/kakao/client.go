package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	keywordPath    = "/v2/local/search/keyword.json"
	maxErrorBody   = 4096
)

// ErrRequest marks failures to reach the search endpoint at all.
var ErrRequest = errors.New("kakao request failed")

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kakao search http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Place is a single keyword-search hit.
type Place struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

type document struct {
	PlaceName   string `json:"place_name"`
	AddressName string `json:"address_name"`
	X           string `json:"x"`
	Y           string `json:"y"`
}

type keywordResponse struct {
	Documents []document `json:"documents"`
}

// Options configure a Client.
type Options struct {
	BaseURL        string
	APIKey         string
	CategoryGroups []string
	Timeout        time.Duration
	// RatePerSecond limits outbound calls; zero or less disables limiting.
	RatePerSecond float64
}

// Client calls the Kakao local keyword search API.
type Client struct {
	baseURL    string
	apiKey     string
	categories string
	limiter    *rate.Limiter
	http       *http.Client
}

// NewClient creates a new keyword search client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		categories: joinCodes(opts.CategoryGroups),
		limiter:    rate.NewLimiter(limit, burst),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Search runs a keyword query and returns places in upstream order.
// An empty slice means the query matched nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrRequest)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrRequest, err)
	}

	params := url.Values{}
	params.Set("query", query)
	if c.categories != "" {
		params.Set("category_group_code", c.categories)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+keywordPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: "<failed to read body: " + readErr.Error() + ">"}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRequest, err)
	}

	places := make([]Place, 0, len(payload.Documents))
	for _, doc := range payload.Documents {
		place, err := doc.toPlace()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequest, err)
		}
		places = append(places, place)
	}
	return places, nil
}

func joinCodes(codes []string) string {
	kept := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			kept = append(kept, code)
		}
	}
	return strings.Join(kept, ",")
}

func (d document) toPlace() (Place, error) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(d.X), 64)
	if err != nil {
		return Place{}, fmt.Errorf("invalid x %q for %q", d.X, d.PlaceName)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(d.Y), 64)
	if err != nil {
		return Place{}, fmt.Errorf("invalid y %q for %q", d.Y, d.PlaceName)
	}
	return Place{
		Name:      d.PlaceName,
		Address:   d.AddressName,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%w: timeout: %w", ErrRequest, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%w: network error: %w", ErrRequest, err)
	}
	return fmt.Errorf("%w: %w", ErrRequest, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}
