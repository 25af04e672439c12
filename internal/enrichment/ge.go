package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"herald/internal/config"
	"herald/internal/constants"
	"herald/pkg/circuitbreaker"
	"herald/pkg/metrics"
)

// Item is one entry of the exchange mapping: item id plus the exact display
// name broadcasts use.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	Value    int64  `json:"value"`
	HighAlch *int64 `json:"highalch,omitempty"`
	LowAlch  *int64 `json:"lowalch,omitempty"`
	Limit    *int64 `json:"limit,omitempty"`
	Icon     string `json:"icon"`
}

// Price is the latest exchange price for one item. High and Low are the
// most recent instant-buy and instant-sell observations.
type Price struct {
	High     int64 `json:"high"`
	HighTime int64 `json:"highTime"`
	Low      int64 `json:"low"`
	LowTime  int64 `json:"lowTime"`
}

// GEClient talks to the wiki's real-time exchange API. All calls share one
// rate limiter and one circuit breaker so a flapping upstream is backed off
// across the whole process.
type GEClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Wrapper
}

func NewGEClient(cfg config.EnrichmentConfig) *GEClient {
	c := &GEClient{
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		baseURL:    cfg.PricesBaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}

	if cfg.BreakerEnabled {
		c.breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("ge-api"))
	}

	return c
}

// ItemMapping fetches the full id-to-name mapping. Callers cache it; the
// upstream asks integrators not to poll this endpoint.
func (c *GEClient) ItemMapping(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.do(ctx, c.baseURL+"/mapping", &items)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item mapping: %w", err)
	}
	return items, nil
}

// LatestPrice fetches the current price for one item id. An item the
// exchange has never traded returns a zero Price, not an error.
func (c *GEClient) LatestPrice(ctx context.Context, itemID int64) (Price, error) {
	var resp struct {
		Data map[string]Price `json:"data"`
	}

	url := fmt.Sprintf("%s/latest?id=%d", c.baseURL, itemID)
	if err := c.do(ctx, url, &resp); err != nil {
		return Price{}, fmt.Errorf("failed to fetch price for item %d: %w", itemID, err)
	}

	price, ok := resp.Data[strconv.FormatInt(itemID, 10)]
	if !ok {
		return Price{}, nil
	}
	return price, nil
}

func (c *GEClient) do(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	fetch := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("exchange api request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
			return nil, fmt.Errorf("exchange api returned status: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode exchange response: %w", err)
		}
		return nil, nil
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.ExecuteWithContext(ctx, fetch)
		c.breaker.RecordRequest(err == nil)
	} else {
		_, err = fetch()
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EnrichmentLookupsTotal.WithLabelValues("ge", status).Inc()
	metrics.ObserveLookupDuration("ge", time.Since(start))

	return err
}
