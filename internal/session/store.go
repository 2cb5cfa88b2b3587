package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/model"
)

// Store persists the wallet-connect session on disk. SQLite keeps reads
// cheap across invocations; the flock guards concurrent CLI processes
// writing the same file.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	now  func() time.Time
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "create session directory", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "create lock directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "open session store", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"CREATE TABLE IF NOT EXISTS wallet_session (slot INTEGER PRIMARY KEY CHECK (slot = 1), payload BLOB NOT NULL, expires_at INTEGER NOT NULL);",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, clierr.Wrap(clierr.CodeInternal, "init session schema", err)
		}
	}

	return &Store{db: db, lock: flock.New(lockPath), now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the stored session, or ok=false when none exists. An
// expired session is deleted and reported as absent.
func (s *Store) Load() (model.WalletSession, bool, error) {
	var payload []byte
	var expiresUnix int64
	err := s.db.QueryRow("SELECT payload, expires_at FROM wallet_session WHERE slot = 1").Scan(&payload, &expiresUnix)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.WalletSession{}, false, nil
		}
		return model.WalletSession{}, false, clierr.Wrap(clierr.CodeInternal, "read session", err)
	}

	if s.now().UTC().Unix() >= expiresUnix {
		if err := s.Delete(); err != nil {
			return model.WalletSession{}, false, err
		}
		return model.WalletSession{}, false, nil
	}

	var sess model.WalletSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return model.WalletSession{}, false, clierr.Wrap(clierr.CodeInternal, "decode session", err)
	}
	return sess, true, nil
}

func (s *Store) Save(sess model.WalletSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode session", err)
	}

	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	_, err = s.db.Exec(
		"INSERT INTO wallet_session (slot, payload, expires_at) VALUES (1, ?, ?) ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload, expires_at=excluded.expires_at",
		payload, sess.ExpiresAt.UTC().Unix(),
	)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "write session", err)
	}
	return nil
}

func (s *Store) Delete() error {
	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.db.Exec("DELETE FROM wallet_session WHERE slot = 1"); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "delete session", err)
	}
	return nil
}

func (s *Store) acquire() (func(), error) {
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "lock session store", err)
	}
	if !locked {
		return nil, clierr.New(clierr.CodeInternal, fmt.Sprintf("lock session store: timeout on %s", s.lock.Path()))
	}
	return func() { _ = s.lock.Unlock() }, nil
}
