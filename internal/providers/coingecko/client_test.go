package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/providers"
)

func TestPriceMapsSymbolToCoinID(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64231.5,"usd_24h_change":-1.2,"usd_market_cap":1200000000000}}`))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second), "")
	c.apiBase = srv.URL
	got, err := c.Price(context.Background(), providers.PriceRequest{Symbol: "BTC"})
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if gotIDs != "bitcoin" {
		t.Fatalf("expected symbol mapped to coin id, got %s", gotIDs)
	}
	if got.Symbol != "BTC" || got.Price.String() != "64231.5" || got.Tier != "free" {
		t.Fatalf("unexpected price: %+v", got)
	}
	if got.Change24hPct != -1.2 {
		t.Fatalf("unexpected 24h change: %f", got.Change24hPct)
	}
}

func TestPriceProTierSendsKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-pro-api-key")
		_, _ = w.Write([]byte(`{"ethereum":{"usd":3050.0}}`))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second), "cg-key")
	c.apiBase = srv.URL
	got, err := c.Price(context.Background(), providers.PriceRequest{Symbol: "eth"})
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if gotKey != "cg-key" {
		t.Fatal("expected pro key header")
	}
	if got.Tier != "pro" {
		t.Fatalf("expected pro tier tag, got %s", got.Tier)
	}
}

func TestPriceUnknownSymbolIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second), "")
	c.apiBase = srv.URL
	_, err := c.Price(context.Background(), providers.PriceRequest{Symbol: "nosuchcoin"})
	if clierr.CodeOf(err) != clierr.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
