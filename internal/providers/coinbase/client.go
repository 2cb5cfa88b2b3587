package coinbase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/model"
)

const (
	defaultAPIHost = "api.coinbase.com"
	accountsPath   = "/api/v3/brokerage/accounts"
)

// Client reads Advanced Trade account balances. Coinbase CDP keys sign a
// short-lived ES256 JWT per request; the key secret is an EC private key
// in PEM form.
type Client struct {
	http      *httpx.Client
	keyID     string
	keySecret string
	apiHost   string
	scheme    string
	now       func() time.Time
}

func New(httpClient *httpx.Client, keyID, keySecret string) *Client {
	return &Client{
		http:      httpClient,
		keyID:     keyID,
		keySecret: keySecret,
		apiHost:   defaultAPIHost,
		scheme:    "https",
		now:       time.Now,
	}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "coinbase",
		Type:         "exchange",
		RequiresKey:  true,
		Capabilities: []string{"exchange-balances"},
		KeyEnvVars:   []string{"ONCHAIN_COINBASE_KEY_ID", "ONCHAIN_COINBASE_KEY_SECRET"},
	}
}

func (c *Client) buildJWT(method, path string) (string, error) {
	// Escaped newlines survive env-var transport; restore them before parsing.
	pemKey := strings.ReplaceAll(c.keySecret, `\n`, "\n")
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return "", clierr.Wrap(clierr.CodeAuth, "coinbase key secret is not a valid EC private key", err)
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "generate jwt nonce", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": c.keyID,
		"iss": "cdp",
		"nbf": now.Unix(),
		"exp": now.Add(2 * time.Minute).Unix(),
		"uri": fmt.Sprintf("%s %s%s", method, c.apiHost, path),
	})
	token.Header["kid"] = c.keyID
	token.Header["nonce"] = hex.EncodeToString(nonce)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeAuth, "sign coinbase jwt", err)
	}
	return signed, nil
}

type account struct {
	Currency         string `json:"currency"`
	AvailableBalance struct {
		Value string `json:"value"`
	} `json:"available_balance"`
	Hold struct {
		Value string `json:"value"`
	} `json:"hold"`
}

func (c *Client) ExchangeBalances(ctx context.Context) (model.ExchangeBalances, error) {
	token, err := c.buildJWT("GET", accountsPath)
	if err != nil {
		return model.ExchangeBalances{}, err
	}

	endpoint := fmt.Sprintf("%s://%s%s?limit=250", c.scheme, c.apiHost, accountsPath)
	headers := map[string]string{"Authorization": "Bearer " + token}

	var resp struct {
		Accounts []account `json:"accounts"`
	}
	if _, err := c.http.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		return model.ExchangeBalances{}, err
	}

	out := model.ExchangeBalances{Exchange: "coinbase"}
	for _, acct := range resp.Accounts {
		free := parseDecimal(acct.AvailableBalance.Value)
		locked := parseDecimal(acct.Hold.Value)
		total := free.Add(locked)
		if total.IsZero() {
			continue
		}
		out.Assets = append(out.Assets, model.ExchangeAsset{
			Asset:  acct.Currency,
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
