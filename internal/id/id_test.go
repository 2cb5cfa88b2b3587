package id

import (
	"strings"
	"testing"
)

func TestParseChainAliases(t *testing.T) {
	chain, err := ParseChain("Mainnet")
	if err != nil {
		t.Fatalf("parse chain: %v", err)
	}
	if chain.Slug != "ethereum" || chain.EVMChainID != 1 {
		t.Fatalf("unexpected chain: %+v", chain)
	}

	if _, err := ParseChain("dogecoin"); err == nil {
		t.Fatal("expected error for unsupported chain")
	}
}

func TestParseChainCAIP2(t *testing.T) {
	chain, err := ParseChain("eip155:8453")
	if err != nil {
		t.Fatalf("parse chain: %v", err)
	}
	if chain.Slug != "base" {
		t.Fatalf("unexpected chain: %+v", chain)
	}

	chain, err = ParseChain("EIP155:1")
	if err != nil {
		t.Fatalf("parse chain: %v", err)
	}
	if chain.Slug != "ethereum" {
		t.Fatalf("unexpected chain: %+v", chain)
	}

	if _, err := ParseChain("eip155:999999"); err == nil {
		t.Fatal("expected error for unknown chain reference")
	}
}

func TestProbeOrderStartsWithEthereum(t *testing.T) {
	order := ProbeOrder()
	if len(order) != 7 {
		t.Fatalf("unexpected probe list length: %d", len(order))
	}
	if order[0].Slug != "ethereum" {
		t.Fatalf("expected ethereum first, got %s", order[0].Slug)
	}
}

func TestValidateAddress(t *testing.T) {
	got, err := ValidateAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	if err != nil {
		t.Fatalf("validate address: %v", err)
	}
	if !strings.HasPrefix(got, "0x") || len(got) != 42 {
		t.Fatalf("unexpected normalized address: %s", got)
	}
	if _, err := ValidateAddress("0x1234"); err == nil {
		t.Fatal("expected error for short address")
	}
}

func TestValidateTxHash(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	got, err := ValidateTxHash(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		t.Fatalf("validate hash: %v", err)
	}
	if got != hash {
		t.Fatalf("expected 0x prefix restored, got %s", got)
	}
	if _, err := ValidateTxHash("0xzz"); err == nil {
		t.Fatal("expected error for non-hex hash")
	}
}
