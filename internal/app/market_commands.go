package app

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/providers"
	"github.com/skillhq/onchain/internal/sentiment"
)

func (s *runtimeState) newPriceCommand() *cobra.Command {
	var vsCurrency string
	cmd := &cobra.Command{
		Use:   "price <symbol>",
		Short: "Spot price for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			if symbol == "" {
				return clierr.New(clierr.CodeUsage, "symbol is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()
			price, err := s.priceProvider.Price(ctx, providers.PriceRequest{
				Symbol:     symbol,
				VsCurrency: strings.ToLower(strings.TrimSpace(vsCurrency)),
			})
			if err != nil {
				return err
			}
			return s.emit(price, "coingecko", false)
		},
	}
	cmd.Flags().StringVar(&vsCurrency, "vs", "usd", "Quote currency")
	return cmd
}

func (s *runtimeState) newSentimentCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sentiment <topic>",
		Short: "Prediction-market sentiment for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return clierr.New(clierr.CodeUsage, "topic is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()
			verdict, err := sentiment.New(s.marketProvider).Analyze(ctx, topic, limit)
			if err != nil {
				return err
			}
			return s.emit(verdict, "polymarket", false)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum signals to include")
	return cmd
}
