package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/skillhq/onchain/internal/httpx"
)

const accountBody = `{
  "balances": [
    {"asset": "BTC", "free": "0.5", "locked": "0.1"},
    {"asset": "ETH", "free": "2", "locked": "0"},
    {"asset": "SHIB", "free": "0.00000000", "locked": "0.00000000"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(httpx.New(5*time.Second), "test-key", "test-secret")
	c.apiBase = srv.URL
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestExchangeBalancesSignsRequest(t *testing.T) {
	var gotQuery url.Values
	var gotHeader string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Get("X-MBX-APIKEY")
		w.Write([]byte(accountBody))
	})

	got, err := c.ExchangeBalances(context.Background())
	if err != nil {
		t.Fatalf("ExchangeBalances: %v", err)
	}

	if gotHeader != "test-key" {
		t.Errorf("X-MBX-APIKEY = %q, want test-key", gotHeader)
	}
	if gotQuery.Get("timestamp") != "1700000000000" {
		t.Errorf("timestamp = %q, want 1700000000000", gotQuery.Get("timestamp"))
	}

	unsigned := url.Values{}
	unsigned.Set("timestamp", gotQuery.Get("timestamp"))
	unsigned.Set("recvWindow", gotQuery.Get("recvWindow"))
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(unsigned.Encode()))
	if want := hex.EncodeToString(mac.Sum(nil)); gotQuery.Get("signature") != want {
		t.Errorf("signature = %q, want %q", gotQuery.Get("signature"), want)
	}

	if got.Exchange != "binance" {
		t.Errorf("Exchange = %q, want binance", got.Exchange)
	}
	if len(got.Assets) != 2 {
		t.Fatalf("assets = %d, want 2 (zero balances skipped)", len(got.Assets))
	}
	if got.Assets[0].Total.String() != "0.6" {
		t.Errorf("BTC total = %s, want 0.6", got.Assets[0].Total)
	}
	if got.Assets[1].Asset != "ETH" || got.Assets[1].Locked.String() != "0" {
		t.Errorf("second asset = %+v, want ETH with zero locked", got.Assets[1])
	}
}
