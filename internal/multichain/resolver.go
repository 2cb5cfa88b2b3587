package multichain

import (
	"context"
	"fmt"
	"strings"
	"time"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
)

// Lookup issues a single-chain transaction lookup. Implemented by the
// explorer provider.
type Lookup func(ctx context.Context, chain id.Chain, hash string) (model.Transaction, error)

// Resolver locates a transaction when only its hash is known, by probing a
// fixed, priority-ordered list of chains. Probing is sequential to stay
// inside conservative third-party rate limits; first success wins.
type Resolver struct {
	lookup  Lookup
	order   []id.Chain
	timeout time.Duration
}

func New(lookup Lookup, timeout time.Duration) *Resolver {
	return &Resolver{lookup: lookup, order: id.ProbeOrder(), timeout: timeout}
}

// WithOrder replaces the default probe order, for callers with a better
// guess about where the transaction lives.
func (r *Resolver) WithOrder(order []id.Chain) *Resolver {
	if len(order) == 0 {
		return r
	}
	clone := *r
	clone.order = order
	return &clone
}

type Result struct {
	Transaction model.Transaction `json:"transaction"`
	Chain       string            `json:"chain"`
	Probes      int               `json:"probes"`
}

// NotFoundError reports an exhausted probe, listing every chain attempted so
// the caller can show the search was exhaustive.
type NotFoundError struct {
	Hash  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found on %d chains (%s)", e.Hash, len(e.Tried), strings.Join(e.Tried, ", "))
}

// Find probes chains in order for the hash. When explicit is non-nil the
// probe loop is bypassed entirely and only that chain is consulted.
func (r *Resolver) Find(ctx context.Context, hash string, explicit *id.Chain) (Result, error) {
	if explicit != nil {
		tx, err := r.lookupOne(ctx, *explicit, hash)
		if err != nil {
			return Result{}, err
		}
		return Result{Transaction: tx, Chain: explicit.Slug, Probes: 1}, nil
	}

	tried := make([]string, 0, len(r.order))
	var remoteFailures []string
	for _, chain := range r.order {
		tried = append(tried, chain.Slug)
		tx, err := r.lookupOne(ctx, chain, hash)
		if err == nil {
			return Result{Transaction: tx, Chain: chain.Slug, Probes: len(tried)}, nil
		}
		if !clierr.IsNotFound(err) {
			// A failing explorer call on one chain feeds the probe loop
			// like a miss, but the reason is kept for the final error.
			remoteFailures = append(remoteFailures, fmt.Sprintf("%s: %v", chain.Slug, err))
		}
	}

	notFound := &NotFoundError{Hash: hash, Tried: tried}
	msg := notFound.Error()
	if len(remoteFailures) > 0 {
		msg = fmt.Sprintf("%s; failures: %s", msg, strings.Join(remoteFailures, "; "))
	}
	return Result{}, clierr.Wrap(clierr.CodeExhausted, msg, notFound)
}

func (r *Resolver) lookupOne(ctx context.Context, chain id.Chain, hash string) (model.Transaction, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.lookup(callCtx, chain, hash)
}
