package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProviderInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	RequiresKey  bool     `json:"requires_key"`
	Capabilities []string `json:"capabilities"`
	KeyEnvVars   []string `json:"key_env_vars,omitempty"`
}

// ProviderReport is one row of `providers list`: static metadata plus the
// capability flag computed from the credentials present at runtime.
type ProviderReport struct {
	ProviderInfo
	Configured bool     `json:"configured"`
	MissingEnv []string `json:"missing_env,omitempty"`
}

type AssetBalance struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Chain    string          `json:"chain,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	PriceUSD decimal.Decimal `json:"price_usd,omitempty"`
	ValueUSD decimal.Decimal `json:"value_usd,omitempty"`
}

type WalletBalances struct {
	Address  string          `json:"address"`
	Chain    string          `json:"chain,omitempty"`
	TotalUSD decimal.Decimal `json:"total_usd"`
	Assets   []AssetBalance  `json:"assets,omitempty"`
}

const (
	TxStatusSuccess = "success"
	TxStatusFailed  = "failed"
	TxStatusPending = "pending"
)

type Transaction struct {
	Hash        string          `json:"hash"`
	Chain       string          `json:"chain"`
	From        string          `json:"from"`
	To          string          `json:"to,omitempty"`
	ValueWei    decimal.Decimal `json:"value_wei"`
	Value       decimal.Decimal `json:"value"`
	Status      string          `json:"status"`
	BlockNumber string          `json:"block_number,omitempty"`
	GasUsed     string          `json:"gas_used,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitempty"`
}

// TransactionPage carries the provider's page cursor verbatim; callers pass
// it back on the next invocation without interpreting it.
type TransactionPage struct {
	Address    string        `json:"address"`
	Chain      string        `json:"chain"`
	Items      []Transaction `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type Price struct {
	Symbol       string          `json:"symbol"`
	VsCurrency   string          `json:"vs_currency"`
	Price        decimal.Decimal `json:"price"`
	Change24hPct float64         `json:"change_24h_pct"`
	MarketCapUSD decimal.Decimal `json:"market_cap_usd,omitempty"`
	Tier         string          `json:"tier,omitempty"`
}

type ExchangeAsset struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
	Total  decimal.Decimal `json:"total"`
}

type ExchangeBalances struct {
	Exchange string          `json:"exchange"`
	Assets   []ExchangeAsset `json:"assets"`
}

// Market is one prediction market as normalized from the market-search
// provider.
type Market struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Slug           string    `json:"slug,omitempty"`
	Outcomes       []string  `json:"outcomes"`
	OutcomePrices  []float64 `json:"outcome_prices"`
	VolumeUSD      float64   `json:"volume_usd"`
	Active         bool      `json:"active"`
	EndDate        time.Time `json:"end_date,omitempty"`
	YesProbability float64   `json:"yes_probability"`
	HasYesOutcome  bool      `json:"-"`
}

const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
	SentimentMixed   = "mixed"
)

// SentimentSignal is one market's contribution to a verdict. Confidence is
// 0-100, probability is the market's resolved "Yes" price.
type SentimentSignal struct {
	MarketID    string  `json:"market_id"`
	Question    string  `json:"question"`
	Sentiment   string  `json:"sentiment"`
	Confidence  int     `json:"confidence"`
	Probability float64 `json:"probability"`
	VolumeUSD   float64 `json:"volume_usd"`
}

type SentimentVerdict struct {
	Topic            string            `json:"topic"`
	OverallSentiment string            `json:"overall_sentiment"`
	Score            int               `json:"score"`
	Confidence       int               `json:"confidence"`
	Signals          []SentimentSignal `json:"signals"`
	Summary          string            `json:"summary"`
}

// WalletSession is the persisted wallet-connect session record.
type WalletSession struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
