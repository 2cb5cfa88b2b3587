package app

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhq/onchain/internal/capability"
	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/multichain"
	"github.com/skillhq/onchain/internal/out"
)

func (s *runtimeState) newTxCommand() *cobra.Command {
	var chainArg string
	cmd := &cobra.Command{
		Use:   "tx <hash>",
		Short: "Look a transaction up, probing chains when none is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := id.ValidateTxHash(args[0])
			if err != nil {
				return err
			}
			var explicit *id.Chain
			if strings.TrimSpace(chainArg) != "" {
				chain, err := id.ParseChain(chainArg)
				if err != nil {
					return err
				}
				explicit = &chain
			}
			if !s.caps[capability.Etherscan] {
				return clierr.New(clierr.CodeNotConfigured, notConfiguredMessage(capability.Etherscan, s.settings.Credentials))
			}

			resolver := multichain.New(s.txProvider.Transaction, s.settings.Timeout)
			result, err := resolver.Find(cmd.Context(), hash, explicit)
			if err != nil {
				return err
			}
			if err := s.emit(result.Transaction, "etherscan", false); err != nil {
				return err
			}
			if explicit == nil && result.Probes > 1 {
				out.Note(s.runner.stderr, "found on %s after probing %d chains", result.Chain, result.Probes)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Chain to check (skips probing)")
	return cmd
}
