package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/peerwave/backend/internal/apperr"
)

// Coin is a single market entry as served to clients. Prices are quoted in
// the requested fiat currency under the USD key for wallet-app compatibility.
type Coin struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Quote  Quote  `json:"quote"`
}

type Quote struct {
	USD QuoteDetail `json:"USD"`
}

type QuoteDetail struct {
	Price            float64 `json:"price"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

// Provider fetches current market data for the top coins by market cap.
type Provider interface {
	TopCoins(ctx context.Context, currency string, limit int) ([]Coin, error)
}

// CoinGeckoClient talks to the CoinGecko markets API.
type CoinGeckoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCoinGeckoClient creates a client. apiKey may be empty for the free tier.
func NewCoinGeckoClient(baseURL, apiKey string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geckoMarket struct {
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// TopCoins fetches the top coins ordered by market cap descending.
func (c *CoinGeckoClient) TopCoins(ctx context.Context, currency string, limit int) ([]Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", limit))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	reqURL := c.baseURL + "/coins/markets?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("price provider").WithDetail(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream("price provider").
			WithDetail(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var markets []geckoMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, apperr.Upstream("price provider").WithDetail(err.Error())
	}

	coins := make([]Coin, 0, len(markets))
	for _, m := range markets {
		coins = append(coins, Coin{
			Symbol: strings.ToUpper(m.Symbol),
			Name:   m.Name,
			Quote: Quote{
				USD: QuoteDetail{
					Price:            m.CurrentPrice,
					PercentChange24h: m.PriceChangePercentage24h,
				},
			},
		})
	}
	return coins, nil
}
