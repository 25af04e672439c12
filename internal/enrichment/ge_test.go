package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/config"
)

func testConfig(baseURL string) config.EnrichmentConfig {
	return config.EnrichmentConfig{
		PricesBaseURL:     baseURL,
		WikiBaseURL:       baseURL,
		UserAgent:         "herald-test",
		RequestsPerSecond: 100,
		Burst:             100,
	}
}

func TestGEClientItemMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapping", r.URL.Path)
		assert.Equal(t, "herald-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 20997, "name": "Twisted bow", "examine": "A bow.", "members": true, "value": 1, "icon": "Twisted bow.png"},
			{"id": 2, "name": "Cannonball", "examine": "Ammo.", "members": true, "value": 5, "icon": "Cannonball.png"}
		]`))
	}))
	defer server.Close()

	client := NewGEClient(testConfig(server.URL))
	items, err := client.ItemMapping(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(20997), items[0].ID)
	assert.Equal(t, "Twisted bow", items[0].Name)
}

func TestGEClientLatestPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "20997", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"20997": {"high": 1456814000, "highTime": 1700000000, "low": 1440000000, "lowTime": 1700000100}}}`))
	}))
	defer server.Close()

	client := NewGEClient(testConfig(server.URL))
	price, err := client.LatestPrice(context.Background(), 20997)
	require.NoError(t, err)
	assert.Equal(t, int64(1456814000), price.High)
	assert.Equal(t, int64(1440000000), price.Low)
}

func TestGEClientLatestPriceUnknownItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	client := NewGEClient(testConfig(server.URL))
	price, err := client.LatestPrice(context.Background(), 999999)
	require.NoError(t, err)
	assert.Zero(t, price.High)
}

func TestGEClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGEClient(testConfig(server.URL))
	_, err := client.ItemMapping(context.Background())
	assert.Error(t, err)
}
