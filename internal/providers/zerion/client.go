package zerion

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

const defaultAPIBase = "https://api.zerion.io/v1"

// Client is the unified wallet-balance service: one call covers positions
// across every chain it indexes. Preferred source for the balances
// operation.
type Client struct {
	http    *httpx.Client
	apiKey  string
	apiBase string
}

func New(httpClient *httpx.Client, apiKey string) *Client {
	return &Client{http: httpClient, apiKey: apiKey, apiBase: defaultAPIBase}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "zerion",
		Type:         "portfolio",
		RequiresKey:  true,
		Capabilities: []string{"balances"},
		KeyEnvVars:   []string{"ONCHAIN_ZERION_API_KEY"},
	}
}

type position struct {
	Attributes struct {
		Quantity struct {
			Float float64 `json:"float"`
		} `json:"quantity"`
		Value        *float64 `json:"value"`
		Price        float64  `json:"price"`
		FungibleInfo struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"fungible_info"`
	} `json:"attributes"`
	Relationships struct {
		Chain struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"chain"`
	} `json:"relationships"`
}

func (c *Client) Balances(ctx context.Context, req providers.BalancesRequest) (model.WalletBalances, error) {
	endpoint := fmt.Sprintf("%s/wallets/%s/positions/?filter[positions]=only_simple&currency=usd&sort=value", c.apiBase, strings.ToLower(req.Address))
	headers := map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(c.apiKey+":")),
	}

	var resp struct {
		Data []position `json:"data"`
	}
	if _, err := c.http.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		return model.WalletBalances{}, err
	}

	out := model.WalletBalances{Address: req.Address}
	if req.Chain != nil {
		out.Chain = req.Chain.Slug
	}
	total := decimal.Zero
	for _, pos := range resp.Data {
		chain := pos.Relationships.Chain.Data.ID
		if req.Chain != nil && chain != req.Chain.Slug {
			continue
		}
		asset := model.AssetBalance{
			Symbol:   pos.Attributes.FungibleInfo.Symbol,
			Name:     pos.Attributes.FungibleInfo.Name,
			Chain:    chain,
			Amount:   decimal.NewFromFloat(pos.Attributes.Quantity.Float),
			PriceUSD: decimal.NewFromFloat(pos.Attributes.Price),
		}
		if pos.Attributes.Value != nil {
			asset.ValueUSD = decimal.NewFromFloat(*pos.Attributes.Value)
			total = total.Add(asset.ValueUSD)
		}
		out.Assets = append(out.Assets, asset)
	}
	out.TotalUSD = total
	return out, nil
}
