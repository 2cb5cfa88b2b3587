package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/model"
)

const defaultAPIBase = "https://api.binance.com"

// Client reads spot account balances. Every request to the account
// endpoint carries an HMAC-SHA256 signature over the query string.
type Client struct {
	http      *httpx.Client
	apiKey    string
	apiSecret string
	apiBase   string
	now       func() time.Time
}

func New(httpClient *httpx.Client, apiKey, apiSecret string) *Client {
	return &Client{
		http:      httpClient,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		apiBase:   defaultAPIBase,
		now:       time.Now,
	}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "binance",
		Type:         "exchange",
		RequiresKey:  true,
		Capabilities: []string{"exchange-balances"},
		KeyEnvVars:   []string{"ONCHAIN_BINANCE_API_KEY", "ONCHAIN_BINANCE_API_SECRET"},
	}
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) ExchangeBalances(ctx context.Context) (model.ExchangeBalances, error) {
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	params.Set("recvWindow", "5000")
	params.Set("signature", c.sign(params.Encode()))

	endpoint := fmt.Sprintf("%s/api/v3/account?%s", c.apiBase, params.Encode())
	headers := map[string]string{"X-MBX-APIKEY": c.apiKey}

	var resp struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if _, err := c.http.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		return model.ExchangeBalances{}, err
	}

	out := model.ExchangeBalances{Exchange: "binance"}
	for _, b := range resp.Balances {
		free := parseDecimal(b.Free)
		locked := parseDecimal(b.Locked)
		total := free.Add(locked)
		if total.IsZero() {
			continue
		}
		out.Assets = append(out.Assets, model.ExchangeAsset{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
			Total:  total,
		})
	}
	return out, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
