package app

import (
	"github.com/spf13/cobra"

	"github.com/skillhq/onchain/internal/capability"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

func (s *runtimeState) newProvidersCommand() *cobra.Command {
	root := &cobra.Command{Use: "providers", Short: "Provider commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List providers and whether credentials configure them",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := []struct {
				provider providers.Provider
				name     capability.Provider
			}{
				{s.zerionProvider, capability.Zerion},
				{s.etherscanBalances, capability.Etherscan},
				{s.priceProvider, capability.CoinGecko},
				{s.binanceProvider, capability.Binance},
				{s.coinbaseProvider, capability.Coinbase},
				{s.marketProvider, capability.Polymarket},
				{s.balanceScraper, ""},
			}

			reports := make([]model.ProviderReport, 0, len(entries))
			for _, entry := range entries {
				report := model.ProviderReport{ProviderInfo: entry.provider.Info()}
				if entry.name == "" {
					// The scraper's capability is tool presence, not keys.
					report.Configured = s.balanceScraper.Detect()
				} else {
					report.Configured = s.caps[entry.name]
					report.MissingEnv = capability.Missing(entry.name, s.settings.Credentials)
					if vars := capability.EnvVars(entry.name); len(vars) > 0 {
						report.KeyEnvVars = vars
					}
				}
				reports = append(reports, report)
			}
			return s.emit(reports, "", false)
		},
	}
	root.AddCommand(list)
	return root
}
