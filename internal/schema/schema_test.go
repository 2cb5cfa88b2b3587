package schema

import (
	"testing"

	"github.com/spf13/cobra"
)

func newTree() *cobra.Command {
	root := &cobra.Command{Use: "onchain"}
	wallet := &cobra.Command{Use: "wallet", Short: "Wallet session commands"}
	connect := &cobra.Command{Use: "connect <address>", Short: "Record a session"}
	connect.Flags().String("topic", "", "Session topic label")
	connect.Flags().String("ttl", "24h", "Session lifetime")
	wallet.AddCommand(connect)
	root.AddCommand(wallet)
	root.AddCommand(&cobra.Command{Use: "price <symbol>", Short: "Spot price"})
	return root
}

func TestDescribeRoot(t *testing.T) {
	got, err := Describe(newTree(), "")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got.Path != "onchain" {
		t.Errorf("Path = %q", got.Path)
	}
	if len(got.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(got.Children))
	}
}

func TestDescribeNestedPath(t *testing.T) {
	got, err := Describe(newTree(), "wallet connect")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got.Path != "onchain wallet connect" {
		t.Errorf("Path = %q", got.Path)
	}
	if len(got.Flags) != 2 {
		t.Fatalf("flags = %d, want 2", len(got.Flags))
	}
	if got.Flags[1].Name != "ttl" || got.Flags[1].Default != "24h" {
		t.Errorf("flag = %+v", got.Flags[1])
	}
}

func TestDescribeUnknownPath(t *testing.T) {
	if _, err := Describe(newTree(), "wallet nonsense"); err == nil {
		t.Fatal("want error for unknown path")
	}
}
