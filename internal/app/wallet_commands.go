package app

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/spf13/cobra"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/out"
)

func (s *runtimeState) newWalletCommand() *cobra.Command {
	root := &cobra.Command{Use: "wallet", Short: "Wallet session commands"}

	var topic, ttlArg string
	connectCmd := &cobra.Command{
		Use:   "connect <address>",
		Short: "Record a wallet session for this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := id.ValidateAddress(args[0])
			if err != nil {
				return err
			}
			ttl, err := time.ParseDuration(ttlArg)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "parse --ttl", err)
			}
			if ttl <= 0 {
				return clierr.New(clierr.CodeUsage, "--ttl must be positive")
			}

			store, err := s.openSession()
			if err != nil {
				return err
			}
			defer store.Close()

			now := s.runner.now().UTC()
			sess := model.WalletSession{
				ID:        newSessionID(),
				Address:   address,
				Topic:     topic,
				CreatedAt: now,
				ExpiresAt: now.Add(ttl),
			}
			if err := store.Save(sess); err != nil {
				return err
			}
			return s.emit(sess, "", false)
		},
	}
	connectCmd.Flags().StringVar(&topic, "topic", "", "Session topic label")
	connectCmd.Flags().StringVar(&ttlArg, "ttl", "24h", "Session lifetime")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openSession()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, ok, err := store.Load()
			if err != nil {
				return err
			}
			if !ok {
				return clierr.New(clierr.CodeNotFound, "no wallet connected; run `onchain wallet connect <address>`")
			}
			return s.emit(sess, "", false)
		},
	}

	disconnectCmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Clear the wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openSession()
			if err != nil {
				return err
			}
			defer store.Close()

			_, ok, err := store.Load()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			if !ok {
				out.Note(s.runner.stderr, "no active session")
				return nil
			}
			out.Note(s.runner.stderr, "session cleared")
			return nil
		},
	}

	root.AddCommand(connectCmd)
	root.AddCommand(statusCmd)
	root.AddCommand(disconnectCmd)
	return root
}

func newSessionID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
