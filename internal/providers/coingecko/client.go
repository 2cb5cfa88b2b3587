package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

const (
	freeBase = "https://api.coingecko.com/api/v3"
	proBase  = "https://pro-api.coingecko.com/api/v3"
)

// coinIDBySymbol maps common tickers to CoinGecko coin ids; unmapped symbols
// are tried lowercased as-is.
var coinIDBySymbol = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"sol":   "solana",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"avax":  "avalanche-2",
	"link":  "chainlink",
	"usdc":  "usd-coin",
	"usdt":  "tether",
}

// Client is the price feed. The API key is optional: present it selects the
// pro tier base URL, absent it falls back to the public free tier.
type Client struct {
	http    *httpx.Client
	apiKey  string
	apiBase string
}

func New(httpClient *httpx.Client, apiKey string) *Client {
	base := freeBase
	if strings.TrimSpace(apiKey) != "" {
		base = proBase
	}
	return &Client{http: httpClient, apiKey: apiKey, apiBase: base}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "coingecko",
		Type:         "price",
		RequiresKey:  false,
		Capabilities: []string{"price"},
		KeyEnvVars:   []string{"ONCHAIN_COINGECKO_API_KEY"},
	}
}

func (c *Client) tier() string {
	if c.apiKey != "" {
		return "pro"
	}
	return "free"
}

func (c *Client) Price(ctx context.Context, req providers.PriceRequest) (model.Price, error) {
	symbol := strings.ToLower(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return model.Price{}, clierr.New(clierr.CodeUsage, "symbol is required")
	}
	vs := strings.ToLower(strings.TrimSpace(req.VsCurrency))
	if vs == "" {
		vs = "usd"
	}
	coinID, ok := coinIDBySymbol[symbol]
	if !ok {
		coinID = symbol
	}

	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", vs)
	query.Set("include_24hr_change", "true")
	query.Set("include_market_cap", "true")

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-cg-pro-api-key"] = c.apiKey
	}

	var resp map[string]map[string]float64
	endpoint := fmt.Sprintf("%s/simple/price?%s", c.apiBase, query.Encode())
	if _, err := c.http.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		return model.Price{}, err
	}

	entry, ok := resp[coinID]
	if !ok || len(entry) == 0 {
		return model.Price{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("no price for symbol %q", req.Symbol))
	}

	price, ok := entry[vs]
	if !ok {
		return model.Price{}, clierr.New(clierr.CodeUnsupported, fmt.Sprintf("currency %q not quoted for %q", vs, req.Symbol))
	}

	out := model.Price{
		Symbol:       strings.ToUpper(symbol),
		VsCurrency:   vs,
		Price:        decimal.NewFromFloat(price),
		Change24hPct: entry[vs+"_24h_change"],
		Tier:         c.tier(),
	}
	if mcap, ok := entry[vs+"_market_cap"]; ok {
		out.MarketCapUSD = decimal.NewFromFloat(mcap)
	}
	return out, nil
}
