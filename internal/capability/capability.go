package capability

import (
	"strings"

	"github.com/skillhq/onchain/internal/config"
)

// Provider identifies one external data source the orchestrator can route to.
type Provider string

const (
	CoinGecko  Provider = "coingecko"
	Etherscan  Provider = "etherscan"
	Zerion     Provider = "zerion"
	Binance    Provider = "binance"
	Coinbase   Provider = "coinbase"
	Polymarket Provider = "polymarket"
)

// Set maps each provider to whether it may be attempted at all this
// invocation. Recomputed from credentials on every run, never cached.
type Set map[Provider]bool

type requirement struct {
	envVars []string
	fields  func(config.Credentials) []string
}

// Providers with an empty requirement are keyless (or the key only selects a
// sub-tier) and are always capable. Paired-secret providers are capable only
// when every field is non-empty.
var requirements = map[Provider]requirement{
	CoinGecko: {},
	Etherscan: {
		envVars: []string{"ONCHAIN_ETHERSCAN_API_KEY"},
		fields:  func(c config.Credentials) []string { return []string{c.EtherscanAPIKey} },
	},
	Zerion: {
		envVars: []string{"ONCHAIN_ZERION_API_KEY"},
		fields:  func(c config.Credentials) []string { return []string{c.ZerionAPIKey} },
	},
	Binance: {
		envVars: []string{"ONCHAIN_BINANCE_API_KEY", "ONCHAIN_BINANCE_API_SECRET"},
		fields:  func(c config.Credentials) []string { return []string{c.BinanceAPIKey, c.BinanceAPISecret} },
	},
	Coinbase: {
		envVars: []string{"ONCHAIN_COINBASE_KEY_ID", "ONCHAIN_COINBASE_KEY_SECRET"},
		fields:  func(c config.Credentials) []string { return []string{c.CoinbaseKeyID, c.CoinbaseKeySecret} },
	},
	Polymarket: {},
}

// Detect converts the merged credential record into per-provider capability
// flags. Pure function of its input.
func Detect(creds config.Credentials) Set {
	out := make(Set, len(requirements))
	for provider := range requirements {
		out[provider] = capable(provider, creds)
	}
	return out
}

func capable(provider Provider, creds config.Credentials) bool {
	req, ok := requirements[provider]
	if !ok {
		return false
	}
	if req.fields == nil {
		return true
	}
	for _, field := range req.fields(creds) {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Missing returns the environment variable names of the absent credentials
// for a provider, for "not configured" messages. Empty when capable.
func Missing(provider Provider, creds config.Credentials) []string {
	req, ok := requirements[provider]
	if !ok || req.fields == nil {
		return nil
	}
	fields := req.fields(creds)
	var missing []string
	for i, field := range fields {
		if strings.TrimSpace(field) == "" && i < len(req.envVars) {
			missing = append(missing, req.envVars[i])
		}
	}
	return missing
}

// EnvVars lists the environment variables a provider reads, present or not.
func EnvVars(provider Provider) []string {
	return requirements[provider].envVars
}
