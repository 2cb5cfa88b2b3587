package app

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhq/onchain/internal/capability"
	"github.com/skillhq/onchain/internal/config"
	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/orchestrate"
	"github.com/skillhq/onchain/internal/providers"
)

func (s *runtimeState) newBalancesCommand() *cobra.Command {
	var chainArg string
	cmd := &cobra.Command{
		Use:   "balances <address>",
		Short: "Wallet balances across chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := id.ValidateAddress(args[0])
			if err != nil {
				return err
			}
			req := providers.BalancesRequest{Address: address}
			if strings.TrimSpace(chainArg) != "" {
				chain, err := id.ParseChain(chainArg)
				if err != nil {
					return err
				}
				req.Chain = &chain
			}

			creds := s.settings.Credentials
			candidates := []orchestrate.Candidate[model.WalletBalances]{
				{
					Name:      "zerion",
					Available: s.caps[capability.Zerion],
					Missing:   capability.Missing(capability.Zerion, creds),
					Preferred: true,
					Call: func(ctx context.Context) (model.WalletBalances, error) {
						return s.zerionProvider.Balances(ctx, req)
					},
				},
				{
					Name:      "etherscan",
					Available: s.caps[capability.Etherscan],
					Missing:   capability.Missing(capability.Etherscan, creds),
					Call: func(ctx context.Context) (model.WalletBalances, error) {
						return s.etherscanBalances.Balances(ctx, req)
					},
				},
				{
					Name:      "scrape",
					Available: true,
					Degraded:  true,
					Detect:    s.balanceScraper.Detect,
					Call: func(ctx context.Context) (model.WalletBalances, error) {
						return s.balanceScraper.Balances(ctx, req)
					},
				},
			}

			outcome, err := orchestrate.Run(cmd.Context(), "balances", s.settings.Timeout, candidates)
			if err != nil {
				return err
			}
			return s.emit(outcome.Payload, outcome.Source, outcome.Degraded)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Restrict to one chain (slug or CAIP-2)")
	return cmd
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	var chainArg, cursor string
	var limit int
	cmd := &cobra.Command{
		Use:   "history <address>",
		Short: "Transaction history for a wallet on one chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := id.ValidateAddress(args[0])
			if err != nil {
				return err
			}
			chain, err := id.ParseChain(chainArg)
			if err != nil {
				return err
			}
			if !s.caps[capability.Etherscan] {
				return clierr.New(clierr.CodeNotConfigured, notConfiguredMessage(capability.Etherscan, s.settings.Credentials))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()
			page, err := s.historyProvider.History(ctx, providers.HistoryRequest{
				Address: address,
				Chain:   chain,
				Cursor:  cursor,
				Limit:   limit,
			})
			if err != nil {
				return err
			}
			return s.emit(page, "etherscan", false)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "ethereum", "Chain (slug or CAIP-2)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Page cursor from a previous response")
	cmd.Flags().IntVar(&limit, "limit", 25, "Transactions per page")
	return cmd
}

func notConfiguredMessage(provider capability.Provider, creds config.Credentials) string {
	missing := capability.Missing(provider, creds)
	if len(missing) == 0 {
		return string(provider) + ": not configured"
	}
	return string(provider) + ": not configured (set " + strings.Join(missing, ", ") + ")"
}
