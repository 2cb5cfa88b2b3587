package scrape

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

// Scraper is the last-resort balance source: it renders a public portfolio
// page with a locally installed headless browser and extracts the USD total
// from the DOM. Results are marked degraded; no API posture, no token
// breakdown, only the headline figure.
type Scraper struct {
	profileURL string
	lookPath   func(string) (string, error)
	runDump    func(ctx context.Context, browser, dir, url string) (string, error)
}

var browserNames = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

func New() *Scraper {
	return &Scraper{
		profileURL: "https://debank.com/profile/%s",
		lookPath:   exec.LookPath,
		runDump:    dumpDOM,
	}
}

func (s *Scraper) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "scrape",
		Type:         "scraper",
		RequiresKey:  false,
		Capabilities: []string{"balances"},
	}
}

// Detect reports whether a usable headless browser is on PATH. The
// orchestrator calls this before ever attempting the scrape.
func (s *Scraper) Detect() bool {
	return s.browser() != ""
}

func (s *Scraper) browser() string {
	for _, name := range browserNames {
		if path, err := s.lookPath(name); err == nil && path != "" {
			return path
		}
	}
	return ""
}

func (s *Scraper) Balances(ctx context.Context, req providers.BalancesRequest) (model.WalletBalances, error) {
	browser := s.browser()
	if browser == "" {
		return model.WalletBalances{}, clierr.New(clierr.CodeNotConfigured, "scrape: no headless browser installed")
	}

	// Fresh profile dir per invocation so no browser state leaks between
	// runs; removed before returning.
	dir, err := os.MkdirTemp("", "onchain-scrape-*")
	if err != nil {
		return model.WalletBalances{}, clierr.Wrap(clierr.CodeInternal, "create scrape profile dir", err)
	}
	defer os.RemoveAll(dir)

	pageURL := fmt.Sprintf(s.profileURL, strings.ToLower(req.Address))
	dom, err := s.runDump(ctx, browser, dir, pageURL)
	if err != nil {
		return model.WalletBalances{}, clierr.Wrap(clierr.CodeUnavailable, "scrape: render portfolio page", err)
	}

	total, err := ExtractTotalUSD(dom)
	if err != nil {
		return model.WalletBalances{}, err
	}
	return model.WalletBalances{Address: req.Address, TotalUSD: total}, nil
}

func dumpDOM(ctx context.Context, browser, dir, url string) (string, error) {
	cmd := exec.CommandContext(ctx, browser,
		"--headless=new",
		"--disable-gpu",
		"--no-sandbox",
		"--user-data-dir="+dir,
		"--virtual-time-budget=10000",
		"--dump-dom",
		url,
	)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var totalUSDPattern = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// ExtractTotalUSD pulls the first dollar amount out of the rendered page.
// The portfolio total is the page's headline figure, so first match wins.
func ExtractTotalUSD(dom string) (decimal.Decimal, error) {
	m := totalUSDPattern.FindStringSubmatch(dom)
	if m == nil {
		return decimal.Decimal{}, clierr.New(clierr.CodeUnavailable, "scrape: no balance figure found in page")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, clierr.Wrap(clierr.CodeUnavailable, "scrape: parse balance figure", err)
	}
	return d, nil
}
