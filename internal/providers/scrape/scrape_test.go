package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/skillhq/onchain/internal/providers"
)

func TestExtractTotalUSD(t *testing.T) {
	cases := []struct {
		name string
		dom  string
		want string
		ok   bool
	}{
		{"plain", `<div class="total">$1,234,567.89</div>`, "1234567.89", true},
		{"no cents", `<span>$500</span>`, "500", true},
		{"spaced", `Total: $ 42.50 across 3 chains`, "42.5", true},
		{"first match wins", `$100.00 then later $999.99`, "100", true},
		{"no figure", `<html><body>loading...</body></html>`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractTotalUSD(tc.dom)
			if tc.ok != (err == nil) {
				t.Fatalf("err = %v, want ok=%v", err, tc.ok)
			}
			if tc.ok && got.String() != tc.want {
				t.Errorf("total = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDetectRequiresBrowser(t *testing.T) {
	s := New()
	s.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if s.Detect() {
		t.Error("Detect() = true with no browser on PATH")
	}

	s.lookPath = func(name string) (string, error) {
		if name == "google-chrome" {
			return "/usr/bin/google-chrome", nil
		}
		return "", errors.New("not found")
	}
	if !s.Detect() {
		t.Error("Detect() = false with google-chrome installed")
	}
}

func TestBalancesUsesFreshProfileDir(t *testing.T) {
	var dirs []string
	s := New()
	s.lookPath = func(string) (string, error) { return "/usr/bin/chromium", nil }
	s.runDump = func(_ context.Context, browser, dir, url string) (string, error) {
		dirs = append(dirs, dir)
		return `<div>$750.25</div>`, nil
	}

	req := providers.BalancesRequest{Address: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"}
	got, err := s.Balances(context.Background(), req)
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if got.TotalUSD.String() != "750.25" {
		t.Errorf("TotalUSD = %s, want 750.25", got.TotalUSD)
	}
	if _, err := s.Balances(context.Background(), req); err != nil {
		t.Fatalf("second Balances: %v", err)
	}
	if len(dirs) != 2 || dirs[0] == dirs[1] {
		t.Errorf("profile dirs = %v, want two distinct dirs", dirs)
	}
}
