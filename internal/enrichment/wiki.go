package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"herald/internal/broadcast"
	"herald/internal/config"
	"herald/internal/constants"
	"herald/pkg/circuitbreaker"
	"herald/pkg/metrics"
)

// Quest pairs a quest's exact display name with its wiki difficulty.
type Quest struct {
	Name       string                    `json:"name"`
	Difficulty broadcast.QuestDifficulty `json:"difficulty"`
}

// WikiClient scrapes the quest lists off the wiki's parse API, one request
// per difficulty page.
type WikiClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Wrapper
}

func NewWikiClient(cfg config.EnrichmentConfig) *WikiClient {
	c := &WikiClient{
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		baseURL:    cfg.WikiBaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}

	if cfg.BreakerEnabled {
		c.breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("wiki-api"))
	}

	return c
}

type wikiParseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Links []struct {
			NS     int    `json:"ns"`
			Exists string `json:"exists"`
			Name   string `json:"*"`
		} `json:"links"`
	} `json:"parse"`
}

// QuestDifficulties fetches every difficulty page and flattens the linked
// quest names. One failing page fails the whole fetch; callers fall back to
// the cached copy.
func (c *WikiClient) QuestDifficulties(ctx context.Context) ([]Quest, error) {
	var quests []Quest

	for _, difficulty := range broadcast.QuestDifficulties() {
		page, err := c.fetchQuestPage(ctx, difficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s quests: %w", difficulty, err)
		}

		for _, link := range page.Parse.Links {
			// ns 0 is the article namespace; everything else is wiki
			// plumbing.
			if link.NS != 0 {
				continue
			}
			quests = append(quests, Quest{
				Name:       link.Name,
				Difficulty: difficulty,
			})
		}
	}

	return quests, nil
}

func (c *WikiClient) fetchQuestPage(ctx context.Context, difficulty broadcast.QuestDifficulty) (*wikiParseResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pageURL := fmt.Sprintf("%s?format=json&action=parse&page=%s&section=1",
		c.baseURL,
		url.QueryEscape("Quests/"+string(difficulty)),
	)

	start := time.Now()
	fetch := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("wiki api request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
			return nil, fmt.Errorf("wiki api returned status: %d", resp.StatusCode)
		}

		var page wikiParseResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return nil, fmt.Errorf("failed to decode wiki response: %w", err)
		}
		return &page, nil
	}

	var result interface{}
	var err error
	if c.breaker != nil {
		result, err = c.breaker.ExecuteWithContext(ctx, fetch)
		c.breaker.RecordRequest(err == nil)
	} else {
		result, err = fetch()
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EnrichmentLookupsTotal.WithLabelValues("wiki", status).Inc()
	metrics.ObserveLookupDuration("wiki", time.Since(start))

	if err != nil {
		return nil, err
	}
	return result.(*wikiParseResponse), nil
}
