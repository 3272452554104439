// Package refresh drives a batch price refresh across all stored
// instruments. Items are fetched sequentially with a fixed inter-item delay
// to stay under upstream rate limits; one instrument's failure never aborts
// the batch.
package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/store"
)

// defaultDelay is the throttle between per-instrument fetches. It is a
// politeness delay, not a correctness mechanism.
const defaultDelay = 500 * time.Millisecond

// Store is the persistence the runner needs.
type Store interface {
	GetAllInstruments() ([]store.Instrument, error)
	AddPrice(store.Price) error
}

// Resolver is the slice of the resolution service the runner needs.
type Resolver interface {
	FetchData(ctx context.Context, identifier, ticker string) fetcher.MarketDataResult
}

// Summary reports the outcome of one batch run: per-instrument counts and
// the captured diagnostic text for each failure.
type Summary struct {
	Succeeded int
	Failed    int
	Failures  map[string]string
}

// Runner performs batch refreshes.
type Runner struct {
	store    Store
	resolver Resolver
	delay    time.Duration
	log      zerolog.Logger
}

// NewRunner creates a batch runner. A zero delay selects the default
// throttle; pass a negative delay to disable it (tests).
func NewRunner(st Store, res Resolver, delay time.Duration, log zerolog.Logger) *Runner {
	if delay == 0 {
		delay = defaultDelay
	}
	if delay < 0 {
		delay = 0
	}
	return &Runner{
		store:    st,
		resolver: res,
		delay:    delay,
		log:      log.With().Str("component", "refresh").Logger(),
	}
}

// Run fetches a current price for every stored instrument and persists the
// successes. It stops early only when the context is canceled; the summary
// covers whatever was attempted.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	instruments, err := r.store.GetAllInstruments()
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Failures: make(map[string]string)}

	for i, inst := range instruments {
		if i > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(r.delay):
			}
		}
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result := r.resolver.FetchData(ctx, inst.Identifier, inst.Ticker)
		if !result.HasPrice() {
			summary.Failed++
			summary.Failures[inst.Identifier] = result.FailureReason
			r.log.Warn().
				Str("identifier", inst.Identifier).
				Str("reason", result.FailureReason).
				Msg("refresh failed for instrument")
			continue
		}

		price := store.Price{
			Identifier: inst.Identifier,
			Date:       result.AsOf,
			Value:      *result.Price,
			Currency:   result.Currency,
		}
		if err := r.store.AddPrice(price); err != nil {
			summary.Failed++
			summary.Failures[inst.Identifier] = "store: " + err.Error()
			r.log.Error().Err(err).Str("identifier", inst.Identifier).Msg("failed to persist price")
			continue
		}

		summary.Succeeded++
		r.log.Info().
			Str("identifier", inst.Identifier).
			Float64("price", *result.Price).
			Str("currency", result.Currency).
			Msg("refreshed")
	}

	return summary, nil
}
