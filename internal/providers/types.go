package providers

import (
	"context"

	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
)

type Provider interface {
	Info() model.ProviderInfo
}

type BalancesRequest struct {
	Address string
	// Chain is optional; the zero value means "all chains the provider
	// covers" for multi-chain providers.
	Chain *id.Chain
}

// BalanceProvider answers wallet balance lookups.
type BalanceProvider interface {
	Provider
	Balances(ctx context.Context, req BalancesRequest) (model.WalletBalances, error)
}

type HistoryRequest struct {
	Address string
	Chain   id.Chain
	// Cursor is the provider's own opaque page token, round-tripped
	// verbatim from a previous response.
	Cursor string
	Limit  int
}

type HistoryProvider interface {
	Provider
	History(ctx context.Context, req HistoryRequest) (model.TransactionPage, error)
}

type PriceRequest struct {
	Symbol     string
	VsCurrency string
}

type PriceProvider interface {
	Provider
	Price(ctx context.Context, req PriceRequest) (model.Price, error)
}

// TxProvider looks a transaction up on one specific chain. A miss on that
// chain is reported as a not-found error, distinct from a remote failure.
type TxProvider interface {
	Provider
	Transaction(ctx context.Context, chain id.Chain, hash string) (model.Transaction, error)
}

// ExchangeProvider reads account balances from a trading venue.
type ExchangeProvider interface {
	Provider
	ExchangeBalances(ctx context.Context) (model.ExchangeBalances, error)
}

// MarketProvider searches prediction markets; the sentiment engine is its
// only consumer.
type MarketProvider interface {
	Provider
	SearchMarkets(ctx context.Context, query string, limit int) ([]model.Market, error)
	TrendingMarkets(ctx context.Context, limit int) ([]model.Market, error)
}
