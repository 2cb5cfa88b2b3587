package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillhq/onchain/internal/capability"
	"github.com/skillhq/onchain/internal/config"
	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/out"
	"github.com/skillhq/onchain/internal/providers"
	"github.com/skillhq/onchain/internal/providers/binance"
	"github.com/skillhq/onchain/internal/providers/coinbase"
	"github.com/skillhq/onchain/internal/providers/coingecko"
	"github.com/skillhq/onchain/internal/providers/etherscan"
	"github.com/skillhq/onchain/internal/providers/polymarket"
	"github.com/skillhq/onchain/internal/providers/scrape"
	"github.com/skillhq/onchain/internal/providers/zerion"
	"github.com/skillhq/onchain/internal/schema"
	"github.com/skillhq/onchain/internal/session"
	"github.com/skillhq/onchain/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

// degradedBalanceProvider is a balance source that must prove its local
// tooling exists before the orchestrator will attempt it.
type degradedBalanceProvider interface {
	providers.BalanceProvider
	Detect() bool
}

type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	caps     capability.Set

	// Provider fields are populated once per invocation; tests pre-seed
	// them with fakes before Execute.
	zerionProvider    providers.BalanceProvider
	etherscanBalances providers.BalanceProvider
	balanceScraper    degradedBalanceProvider
	historyProvider   providers.HistoryProvider
	priceProvider     providers.PriceProvider
	txProvider        providers.TxProvider
	binanceProvider   providers.ExchangeProvider
	coinbaseProvider  providers.ExchangeProvider
	marketProvider    providers.MarketProvider

	openSession func() (*session.Store, error)
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	if err == nil {
		return 0
	}
	state.renderError(err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Crypto holdings, prices, and market sentiment from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.caps = capability.Detect(settings.Credentials)
			for _, warning := range settings.Warnings {
				out.Note(s.runner.stderr, "warning: %s", warning)
			}

			if s.priceProvider == nil {
				httpClient := httpx.New(settings.Timeout)
				creds := settings.Credentials
				explorer := etherscan.New(httpClient, creds.EtherscanAPIKey)
				s.zerionProvider = zerion.New(httpClient, creds.ZerionAPIKey)
				s.etherscanBalances = explorer
				s.balanceScraper = scrape.New()
				s.historyProvider = explorer
				s.priceProvider = coingecko.New(httpClient, creds.CoinGeckoAPIKey)
				s.txProvider = explorer
				s.binanceProvider = binance.New(httpClient, creds.BinanceAPIKey, creds.BinanceAPISecret)
				s.coinbaseProvider = coinbase.New(httpClient, creds.CoinbaseKeyID, creds.CoinbaseKeySecret)
				s.marketProvider = polymarket.New(httpClient)
			}
			if s.openSession == nil {
				s.openSession = func() (*session.Store, error) {
					return session.Open(s.settings.SessionPath, s.settings.SessionLockPath)
				}
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output the payload as JSON")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Provider request timeout (e.g. 10s)")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newBalancesCommand())
	cmd.AddCommand(s.newHistoryCommand())
	cmd.AddCommand(s.newPriceCommand())
	cmd.AddCommand(s.newTxCommand())
	cmd.AddCommand(s.newExchangeCommand())
	cmd.AddCommand(s.newSentimentCommand())
	cmd.AddCommand(s.newWalletCommand())
	cmd.AddCommand(s.newProvidersCommand())
	cmd.AddCommand(s.newSchemaCommand(cmd))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (s *runtimeState) newSchemaCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Describe(root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			// Schema output is always JSON; key=value lines cannot carry a
			// nested command tree.
			return out.Render(s.runner.stdout, data, true)
		},
	}
}

// emit renders one successful payload and attributes its source on stderr.
// Exactly one source per answer; a degraded source is flagged as such.
func (s *runtimeState) emit(payload any, source string, degraded bool) error {
	if err := out.Render(s.runner.stdout, payload, s.settings.JSON); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "render output", err)
	}
	if source != "" {
		if degraded {
			out.Note(s.runner.stderr, "source: %s (degraded, unverified figure)", source)
		} else {
			out.Note(s.runner.stderr, "source: %s", source)
		}
	}
	return nil
}

func (s *runtimeState) renderError(err error) {
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
	}
	fmt.Fprintf(s.runner.stderr, "%s: %s: %s\n", version.CLIName, clierr.Kind(err), message)
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
