package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://fakestoreapi.com"
	DefaultCacheTTL = time.Hour

	requestTimeout = 10 * time.Second
)

var ErrNotFound = errors.New("product not found")

const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeNotFound = "not_found"
)

// Client reads the remote catalog. Listing failures are absorbed by
// substituting the deterministic mock collection, so callers always
// get something to render. Successful listings are cached for TTL;
// fallback results are never cached, so a recovered upstream is picked
// up on the next call.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
	TTL     time.Duration

	mu        sync.Mutex
	cached    []Product
	fetchedAt time.Time

	fetches *prometheus.CounterVec
}

func NewClient(baseURL string, log *zap.Logger, reg *prometheus.Registry) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: requestTimeout},
		Log:     log,
		TTL:     DefaultCacheTTL,
	}

	if reg != nil {
		c.fetches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_fetches_total",
				Help: "Upstream catalog fetches by operation and outcome",
			},
			[]string{"op", "outcome"},
		)
		reg.MustRegister(c.fetches)
	}

	return c
}

// Products returns the full collection, from cache when fresh.
func (c *Client) Products(ctx context.Context) []Product {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.fetchedAt) < c.TTL {
		out := c.cached
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	products, err := c.fetchProducts(ctx)
	if err != nil {
		c.Log.Warn("catalog fetch failed, serving fallback data", zap.Error(err))
		c.count("products", outcomeFallback)
		return MockProducts()
	}

	c.mu.Lock()
	c.cached = products
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.count("products", outcomeOK)
	return products
}

// Product resolves a single record. A confirmed upstream 404 is
// surfaced as ErrNotFound; any availability failure substitutes the
// mock record with the same id.
func (c *Client) Product(ctx context.Context, id int) (Product, error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.fetchedAt) < c.TTL {
		for _, p := range c.cached {
			if p.ID == id {
				c.mu.Unlock()
				return p, nil
			}
		}
	}
	c.mu.Unlock()

	p, err := c.fetchProduct(ctx, id)
	switch {
	case err == nil:
		c.count("product", outcomeOK)
		return p, nil
	case errors.Is(err, ErrNotFound):
		c.count("product", outcomeNotFound)
		return Product{}, ErrNotFound
	default:
		c.Log.Warn("product fetch failed, serving fallback data",
			zap.Error(err), zap.Int("product_id", id))
		c.count("product", outcomeFallback)
		return MockProduct(id), nil
	}
}

func (c *Client) fetchProducts(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/products", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("catalog bad status: %d", resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) fetchProduct(ctx context.Context, id int) (Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%d", c.BaseURL, id), nil)
	if err != nil {
		return Product{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Product{}, classifyErr(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Product{}, ErrNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Product{}, fmt.Errorf("catalog bad status: %d", resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

func (c *Client) count(op, outcome string) {
	if c.fetches != nil {
		c.fetches.WithLabelValues(op, outcome).Inc()
	}
}

func classifyErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("catalog timeout: %w", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("catalog timeout: %w", err)
	}
	return fmt.Errorf("catalog unavailable: %w", err)
}
