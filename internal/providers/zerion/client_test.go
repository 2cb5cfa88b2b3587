package zerion

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/providers"
)

const positionsBody = `{
  "data": [
    {
      "attributes": {
        "quantity": {"float": 1.5},
        "value": 4500.25,
        "price": 3000.17,
        "fungible_info": {"name": "Ethereum", "symbol": "ETH"}
      },
      "relationships": {"chain": {"data": {"id": "ethereum"}}}
    },
    {
      "attributes": {
        "quantity": {"float": 250},
        "value": 250.0,
        "price": 1.0,
        "fungible_info": {"name": "USD Coin", "symbol": "USDC"}
      },
      "relationships": {"chain": {"data": {"id": "base"}}}
    },
    {
      "attributes": {
        "quantity": {"float": 10},
        "value": null,
        "price": 0,
        "fungible_info": {"name": "Dust Token", "symbol": "DUST"}
      },
      "relationships": {"chain": {"data": {"id": "polygon"}}}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(httpx.New(5*time.Second), "zk_test_key")
	c.apiBase = srv.URL
	return c, srv
}

func TestBalancesAggregatesAcrossChains(t *testing.T) {
	var gotAuth, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(positionsBody))
	})

	got, err := c.Balances(context.Background(), providers.BalancesRequest{
		Address: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
	})
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("zk_test_key:"))
	if gotAuth != wantAuth {
		t.Errorf("Authorization = %q, want %q", gotAuth, wantAuth)
	}
	if !strings.Contains(gotPath, strings.ToLower("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")) {
		t.Errorf("request path %q missing lowercased address", gotPath)
	}
	if len(got.Assets) != 3 {
		t.Fatalf("assets = %d, want 3", len(got.Assets))
	}
	if got.TotalUSD.String() != "4750.25" {
		t.Errorf("TotalUSD = %s, want 4750.25", got.TotalUSD)
	}
	if got.Assets[1].Chain != "base" || got.Assets[1].Symbol != "USDC" {
		t.Errorf("second asset = %s on %s, want USDC on base", got.Assets[1].Symbol, got.Assets[1].Chain)
	}
	if !got.Assets[2].ValueUSD.IsZero() {
		t.Errorf("null value should stay zero, got %s", got.Assets[2].ValueUSD)
	}
}

func TestBalancesFiltersToRequestedChain(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(positionsBody))
	})

	base, err := id.ParseChain("base")
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Balances(context.Background(), providers.BalancesRequest{
		Address: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		Chain:   &base,
	})
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if got.Chain != "base" {
		t.Errorf("Chain = %q, want base", got.Chain)
	}
	if len(got.Assets) != 1 || got.Assets[0].Symbol != "USDC" {
		t.Fatalf("assets = %+v, want only USDC", got.Assets)
	}
	if got.TotalUSD.String() != "250" {
		t.Errorf("TotalUSD = %s, want 250", got.TotalUSD)
	}
}
