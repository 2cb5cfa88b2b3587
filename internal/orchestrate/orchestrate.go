package orchestrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	clierr "github.com/skillhq/onchain/internal/errors"
)

// Candidate is one provider entry in an operation's fallback list. Lists are
// operation-specific and fixed at compile time; only the Available flags and
// the Call closures vary per invocation.
type Candidate[T any] struct {
	Name string

	// Available is the capability flag: whether the credentials present
	// this invocation allow the provider to be attempted at all.
	Available bool

	// Missing names the absent credential env vars when !Available.
	Missing []string

	// Preferred providers are tried before the ordinary ordered list and
	// fall through to it on failure.
	Preferred bool

	// Degraded marks a lower-trust last resort (e.g. page scraping). It is
	// attempted only after every credentialed provider failed, and only if
	// Detect reports its tooling installed.
	Degraded bool
	Detect   func() bool

	Call func(ctx context.Context) (T, error)
}

// Outcome is the success side of an operation result. Exactly one source
// answers; values from different providers are never blended.
type Outcome[T any] struct {
	Payload  T
	Source   string
	Degraded bool
}

// Attempt records why one candidate did not produce the result.
type Attempt struct {
	Provider      string
	Err           error
	NotConfigured bool
}

// Run executes one logical operation against its ordered candidate list:
// filter by capability, try sequentially with a bounded per-call timeout,
// stop on first success. A capable provider that fails is never re-called;
// the only redundancy is the next distinct provider.
func Run[T any](ctx context.Context, operation string, timeout time.Duration, candidates []Candidate[T]) (Outcome[T], error) {
	var zero Outcome[T]

	attempts := make([]Attempt, 0, len(candidates))
	runnable := make([]Candidate[T], 0, len(candidates))
	for _, cand := range orderCandidates(candidates) {
		switch {
		case !cand.Available:
			attempts = append(attempts, Attempt{
				Provider:      cand.Name,
				Err:           notConfiguredErr(cand.Name, cand.Missing),
				NotConfigured: true,
			})
		case cand.Degraded && cand.Detect != nil && !cand.Detect():
			attempts = append(attempts, Attempt{
				Provider:      cand.Name,
				Err:           clierr.New(clierr.CodeNotConfigured, fmt.Sprintf("%s: scraping tool not installed", cand.Name)),
				NotConfigured: true,
			})
		default:
			runnable = append(runnable, cand)
		}
	}

	if len(runnable) == 0 {
		return zero, clierr.New(clierr.CodeNotConfigured, fmt.Sprintf("%s: no provider configured; %s", operation, joinReasons(attempts)))
	}

	for _, cand := range runnable {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		payload, err := cand.Call(callCtx)
		cancel()
		if err == nil {
			return Outcome[T]{Payload: payload, Source: cand.Name, Degraded: cand.Degraded}, nil
		}
		attempts = append(attempts, Attempt{Provider: cand.Name, Err: err, NotConfigured: clierr.IsNotConfigured(err)})
	}

	return zero, exhaustedErr(operation, attempts)
}

// orderCandidates keeps the compile-time list order but moves preferred
// providers to the front and degraded last resorts to the back.
func orderCandidates[T any](candidates []Candidate[T]) []Candidate[T] {
	out := make([]Candidate[T], 0, len(candidates))
	for _, c := range candidates {
		if c.Preferred && !c.Degraded {
			out = append(out, c)
		}
	}
	for _, c := range candidates {
		if !c.Preferred && !c.Degraded {
			out = append(out, c)
		}
	}
	for _, c := range candidates {
		if c.Degraded {
			out = append(out, c)
		}
	}
	return out
}

func notConfiguredErr(name string, missing []string) error {
	if len(missing) == 0 {
		return clierr.New(clierr.CodeNotConfigured, fmt.Sprintf("%s: not configured", name))
	}
	return clierr.New(clierr.CodeNotConfigured, fmt.Sprintf("%s: not configured (set %s)", name, strings.Join(missing, ", ")))
}

// exhaustedErr aggregates every failure reason, keeping "not configured"
// entries distinguishable from remote failures so the user knows what to fix.
func exhaustedErr(operation string, attempts []Attempt) error {
	return clierr.New(clierr.CodeExhausted, fmt.Sprintf("%s: every provider failed; %s", operation, joinReasons(attempts)))
}

func joinReasons(attempts []Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, a.Err.Error())
	}
	return strings.Join(parts, "; ")
}
