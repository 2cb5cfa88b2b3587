package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhq/onchain/internal/capability"
	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/orchestrate"
)

func (s *runtimeState) newExchangeCommand() *cobra.Command {
	root := &cobra.Command{Use: "exchange", Short: "Exchange account commands"}

	var exchangeArg string
	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Account balances held on an exchange",
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := s.exchangeCandidates(exchangeArg)
			if err != nil {
				return err
			}
			outcome, err := orchestrate.Run(cmd.Context(), "exchange balances", s.settings.Timeout, candidates)
			if err != nil {
				return err
			}
			return s.emit(outcome.Payload, outcome.Source, outcome.Degraded)
		},
	}
	balancesCmd.Flags().StringVar(&exchangeArg, "exchange", "", "Query one exchange only (binance|coinbase)")
	root.AddCommand(balancesCmd)
	return root
}

// exchangeCandidates builds the fallback list: both venues in fixed order,
// or exactly the named one when --exchange is set.
func (s *runtimeState) exchangeCandidates(exchangeArg string) ([]orchestrate.Candidate[model.ExchangeBalances], error) {
	creds := s.settings.Credentials
	all := []orchestrate.Candidate[model.ExchangeBalances]{
		{
			Name:      "binance",
			Available: s.caps[capability.Binance],
			Missing:   capability.Missing(capability.Binance, creds),
			Call: func(ctx context.Context) (model.ExchangeBalances, error) {
				return s.binanceProvider.ExchangeBalances(ctx)
			},
		},
		{
			Name:      "coinbase",
			Available: s.caps[capability.Coinbase],
			Missing:   capability.Missing(capability.Coinbase, creds),
			Call: func(ctx context.Context) (model.ExchangeBalances, error) {
				return s.coinbaseProvider.ExchangeBalances(ctx)
			},
		},
	}

	name := strings.ToLower(strings.TrimSpace(exchangeArg))
	if name == "" {
		return all, nil
	}
	for _, cand := range all {
		if cand.Name == name {
			return []orchestrate.Candidate[model.ExchangeBalances]{cand}, nil
		}
	}
	return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported exchange %q (binance|coinbase)", exchangeArg))
}
