package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLocalOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global.yaml", "providers:\n  etherscan:\n    api_key: global-key\n  zerion:\n    api_key: zerion-key\n")
	local := writeConfig(t, dir, "local.yaml", "providers:\n  etherscan:\n    api_key: local-key\n")

	settings := Settings{}
	applyFileConfig(global, &settings)
	applyFileConfig(local, &settings)

	if settings.Credentials.EtherscanAPIKey != "local-key" {
		t.Fatalf("expected local file to win, got %s", settings.Credentials.EtherscanAPIKey)
	}
	if settings.Credentials.ZerionAPIKey != "zerion-key" {
		t.Fatalf("global-only value lost: %s", settings.Credentials.ZerionAPIKey)
	}
}

func TestEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "providers:\n  etherscan:\n    api_key: file-key\n")
	t.Setenv("ONCHAIN_ETHERSCAN_API_KEY", "env-key")

	settings := Settings{}
	applyFileConfig(path, &settings)
	applyEnv(&settings)

	if settings.Credentials.EtherscanAPIKey != "env-key" {
		t.Fatalf("expected env to win, got %s", settings.Credentials.EtherscanAPIKey)
	}
}

func TestMalformedConfigIsWarningNotError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "providers: [not a mapping\n")

	settings := Settings{}
	applyFileConfig(path, &settings)

	if len(settings.Warnings) != 1 || !strings.Contains(settings.Warnings[0], "malformed") {
		t.Fatalf("expected malformed-config warning, got %#v", settings.Warnings)
	}
	if settings.Credentials != (Credentials{}) {
		t.Fatalf("malformed file must be treated as empty, got %+v", settings.Credentials)
	}
}

func TestLoadDefaultsAndFlagTimeout(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	settings, err := Load(GlobalFlags{Timeout: "3s"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Timeout != 3*time.Second {
		t.Fatalf("expected flag timeout, got %v", settings.Timeout)
	}
	if settings.SessionPath == "" || settings.SessionLockPath == "" {
		t.Fatal("expected session paths to be set")
	}
}

func TestLoadRejectsBadTimeoutFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	if _, err := Load(GlobalFlags{Timeout: "soon"}); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}
