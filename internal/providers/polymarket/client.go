package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/model"
)

const defaultAPIBase = "https://gamma-api.polymarket.com"

// Client queries the Gamma markets API. No key required; the endpoints
// serve public market metadata.
type Client struct {
	http    *httpx.Client
	apiBase string
}

func New(httpClient *httpx.Client) *Client {
	return &Client{http: httpClient, apiBase: defaultAPIBase}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "polymarket",
		Type:         "prediction-markets",
		RequiresKey:  false,
		Capabilities: []string{"sentiment"},
	}
}

// gammaMarket mirrors the wire format. Outcomes and outcomePrices arrive
// as JSON arrays serialized into strings, and volume as a string number.
type gammaMarket struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	Slug          string `json:"slug"`
	Outcomes      string `json:"outcomes"`
	OutcomePrices string `json:"outcomePrices"`
	Volume        string `json:"volume"`
	Active        bool   `json:"active"`
	EndDate       string `json:"endDate"`
}

func (c *Client) SearchMarkets(ctx context.Context, term string, limit int) ([]model.Market, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(limit))
	// Gamma's text search treats spaces as term separators.
	q.Set("title_like", term)
	return c.fetch(ctx, q)
}

func (c *Client) TrendingMarkets(ctx context.Context, limit int) ([]model.Market, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order", "volume24hr")
	q.Set("ascending", "false")
	return c.fetch(ctx, q)
}

func (c *Client) fetch(ctx context.Context, q url.Values) ([]model.Market, error) {
	endpoint := fmt.Sprintf("%s/markets?%s", c.apiBase, q.Encode())

	var raw []gammaMarket
	if _, err := c.http.GetJSON(ctx, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]model.Market, 0, len(raw))
	for _, gm := range raw {
		m, ok := normalize(gm)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func normalize(gm gammaMarket) (model.Market, bool) {
	if gm.ID == "" || gm.Question == "" {
		return model.Market{}, false
	}
	m := model.Market{
		ID:       gm.ID,
		Question: gm.Question,
		Slug:     gm.Slug,
		Active:   gm.Active,
	}
	if v, err := strconv.ParseFloat(gm.Volume, 64); err == nil {
		m.VolumeUSD = v
	}
	if t, err := time.Parse(time.RFC3339, gm.EndDate); err == nil {
		m.EndDate = t
	}
	if err := json.Unmarshal([]byte(gm.Outcomes), &m.Outcomes); err != nil {
		return model.Market{}, false
	}
	var prices []string
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &prices); err != nil {
		return model.Market{}, false
	}
	if len(prices) != len(m.Outcomes) {
		return model.Market{}, false
	}
	m.OutcomePrices = make([]float64, len(prices))
	for i, p := range prices {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return model.Market{}, false
		}
		m.OutcomePrices[i] = f
	}
	for i, outcome := range m.Outcomes {
		switch strings.ToLower(outcome) {
		case "yes", "true":
			m.HasYesOutcome = true
			m.YesProbability = m.OutcomePrices[i]
		}
		if m.HasYesOutcome {
			break
		}
	}
	return m, true
}
