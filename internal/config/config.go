package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	clierr "github.com/skillhq/onchain/internal/errors"
)

const localConfigName = "onchain.yaml"

type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	Timeout    string
}

// Credentials is the merged, flat secret record. Environment always wins
// over file-based config; the local file wins over the global one.
type Credentials struct {
	CoinGeckoAPIKey   string
	EtherscanAPIKey   string
	ZerionAPIKey      string
	BinanceAPIKey     string
	BinanceAPISecret  string
	CoinbaseKeyID     string
	CoinbaseKeySecret string
}

type Settings struct {
	JSON            bool
	Timeout         time.Duration
	SessionPath     string
	SessionLockPath string
	Credentials     Credentials

	// Warnings collects non-fatal load problems (e.g. a malformed config
	// file, which is treated as empty rather than blocking resolution).
	Warnings []string
}

type fileConfig struct {
	Timeout   string `yaml:"timeout"`
	Providers struct {
		CoinGecko struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"coingecko"`
		Etherscan struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"etherscan"`
		Zerion struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"zerion"`
		Binance struct {
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
		} `yaml:"binance"`
		Coinbase struct {
			KeyID     string `yaml:"key_id"`
			KeySecret string `yaml:"key_secret"`
		} `yaml:"coinbase"`
	} `yaml:"providers"`
}

// Load resolves settings for one invocation. Precedence, lowest first:
// defaults, global config file, local config file, environment, flags.
func Load(flags GlobalFlags) (Settings, error) {
	// Populate the environment from a .env file if present; existing
	// variables are never overwritten, so real environment still wins.
	_ = godotenv.Load()

	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	globalPath, err := globalConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	applyFileConfig(globalPath, &settings)
	if flags.ConfigPath == "" {
		applyFileConfig(localConfigName, &settings)
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	sessionPath, lockPath, err := defaultSessionPaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Timeout:         10 * time.Second,
		SessionPath:     sessionPath,
		SessionLockPath: lockPath,
	}, nil
}

func globalConfigPath(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "onchain", "config.yaml"), nil
}

func defaultSessionPaths() (string, string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "onchain")
	return filepath.Join(dir, "session.db"), filepath.Join(dir, "session.lock"), nil
}

// applyFileConfig merges one config file into settings. A missing file is
// fine; a malformed one is reported as a warning and treated as empty.
func applyFileConfig(path string, settings *Settings) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			settings.Warnings = append(settings.Warnings, fmt.Sprintf("config %s unreadable: %v", path, err))
		}
		return
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		settings.Warnings = append(settings.Warnings, fmt.Sprintf("config %s malformed, ignoring: %v", path, err))
		return
	}

	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			settings.Timeout = d
		} else {
			settings.Warnings = append(settings.Warnings, fmt.Sprintf("config %s timeout invalid: %v", path, err))
		}
	}
	creds := &settings.Credentials
	if v := cfg.Providers.CoinGecko.APIKey; v != "" {
		creds.CoinGeckoAPIKey = v
	}
	if v := cfg.Providers.Etherscan.APIKey; v != "" {
		creds.EtherscanAPIKey = v
	}
	if v := cfg.Providers.Zerion.APIKey; v != "" {
		creds.ZerionAPIKey = v
	}
	if v := cfg.Providers.Binance.APIKey; v != "" {
		creds.BinanceAPIKey = v
	}
	if v := cfg.Providers.Binance.APISecret; v != "" {
		creds.BinanceAPISecret = v
	}
	if v := cfg.Providers.Coinbase.KeyID; v != "" {
		creds.CoinbaseKeyID = v
	}
	if v := cfg.Providers.Coinbase.KeySecret; v != "" {
		creds.CoinbaseKeySecret = v
	}
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("ONCHAIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	creds := &settings.Credentials
	if v := os.Getenv("ONCHAIN_COINGECKO_API_KEY"); v != "" {
		creds.CoinGeckoAPIKey = v
	}
	if v := os.Getenv("ONCHAIN_ETHERSCAN_API_KEY"); v != "" {
		creds.EtherscanAPIKey = v
	}
	if v := os.Getenv("ONCHAIN_ZERION_API_KEY"); v != "" {
		creds.ZerionAPIKey = v
	}
	if v := os.Getenv("ONCHAIN_BINANCE_API_KEY"); v != "" {
		creds.BinanceAPIKey = v
	}
	if v := os.Getenv("ONCHAIN_BINANCE_API_SECRET"); v != "" {
		creds.BinanceAPISecret = v
	}
	if v := os.Getenv("ONCHAIN_COINBASE_KEY_ID"); v != "" {
		creds.CoinbaseKeyID = v
	}
	if v := os.Getenv("ONCHAIN_COINBASE_KEY_SECRET"); v != "" {
		creds.CoinbaseKeySecret = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON {
		settings.JSON = true
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return clierr.Wrap(clierr.CodeUsage, "parse --timeout", err)
		}
		settings.Timeout = d
	}
	return nil
}
