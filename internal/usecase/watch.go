package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/infrastructure/logger"
	"github.com/farewatch/farewatch/internal/infrastructure/timeutil"
)

// Worker pool bounds. Concurrency shortens wall-clock time under the host's
// execution ceiling; the provider pacer keeps the request rate flat
// regardless of pool size.
const (
	DefaultWorkers = 2
	MaxWorkers     = 4

	// DefaultQueryBudget estimates one query-plus-evaluation cycle. When
	// the remaining context deadline cannot fit another cycle, the run
	// stops dispatching and finalizes with what it has.
	DefaultQueryBudget = 15 * time.Second
)

// FlightWatcher runs one fare search to completion.
type FlightWatcher interface {
	// Run executes a full search for the given plan. It returns an error
	// only when the plan is invalid and no candidates were queried; every
	// execution failure after that point is reported through the returned
	// run's Status and FailureCause.
	Run(ctx context.Context, plan domain.SearchPlan) (*domain.SearchRun, error)
}

// Config contains configuration options for the watcher.
type Config struct {
	// Workers is the candidate query pool size (clamped to 1..MaxWorkers)
	Workers int

	// QueryBudget is the reserve kept for one more query cycle
	QueryBudget time.Duration

	// Clock overrides the time source (tests)
	Clock timeutil.Clock

	// Logger overrides the log destination (tests)
	Logger *logger.Logger
}

// watcher implements FlightWatcher.
type watcher struct {
	client      domain.OfferClient
	workers     int
	queryBudget time.Duration
	clock       timeutil.Clock
	log         *logger.Logger
}

// NewWatcher creates a FlightWatcher over the given offer client.
// A nil config uses the defaults.
func NewWatcher(client domain.OfferClient, cfg *Config) FlightWatcher {
	w := &watcher{
		client:      client,
		workers:     DefaultWorkers,
		queryBudget: DefaultQueryBudget,
		clock:       timeutil.NewRealClock(),
		log:         logger.Nop(),
	}
	if cfg != nil {
		if cfg.Workers > 0 {
			w.workers = cfg.Workers
		}
		if cfg.QueryBudget > 0 {
			w.queryBudget = cfg.QueryBudget
		}
		if cfg.Clock != nil {
			w.clock = cfg.Clock
		}
		if cfg.Logger != nil {
			w.log = cfg.Logger
		}
	}
	if w.workers > MaxWorkers {
		w.workers = MaxWorkers
	}
	return w
}

// queryResult carries one candidate's outcome from a worker to the collector.
type queryResult struct {
	index  int
	offers []domain.Offer
	err    error
}

// Run implements FlightWatcher.Run.
//
// State machine: pending -> in_progress -> {completed, failed}. Candidates
// are dispatched in generator order to a bounded worker pool; offers are
// aggregated into a slice indexed by candidate, so the final stable sort
// breaks ties by generator order no matter which worker finished first.
func (w *watcher) Run(ctx context.Context, plan domain.SearchPlan) (*domain.SearchRun, error) {
	plan.SetDefaults()

	run := &domain.SearchRun{
		ID:        uuid.New().String(),
		Plan:      plan,
		Status:    domain.RunPending,
		StartedAt: w.clock.Now(),
	}
	log := w.log.WithRun(run.ID)

	if err := plan.Validate(); err != nil {
		return w.fail(run, err.Error()), err
	}

	candidates, err := domain.ExpandDateWindow(plan)
	if err != nil {
		return w.fail(run, err.Error()), err
	}

	run.Candidates = candidates
	run.Status = domain.RunInProgress
	log.Info().
		Str("route", plan.Route()).
		Int("candidates", len(candidates)).
		Int("workers", w.workers).
		Msg("Search run started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	// Buffered so workers never block on the collector.
	results := make(chan queryResult, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				offers, err := w.client.Search(ctx, candidates[idx], plan)
				results <- queryResult{index: idx, offers: offers, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// stopDispatch is closed exactly once when the collector decides no
	// further candidates are worth querying (early completion or a fatal
	// query error).
	stopDispatch := make(chan struct{})
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(func() { close(stopDispatch) }) }

	var dispatched atomic.Int64
	go func() {
		defer close(jobs)
		for i := range candidates {
			if w.budgetExhausted(ctx) {
				log.Warn().
					Int("dispatched", int(dispatched.Load())).
					Msg("Time budget exhausted, finalizing early")
				return
			}
			select {
			case <-stopDispatch:
				return
			case <-ctx.Done():
				return
			case jobs <- i:
				dispatched.Add(1)
			}
		}
	}()

	collected := make([][]domain.Offer, len(candidates))
	outcomes := make([]domain.QueryOutcome, len(candidates))
	for i, c := range candidates {
		outcomes[i] = domain.QueryOutcome{Candidate: c, Skipped: true}
	}

	var failureCause string
	for res := range results {
		out := &outcomes[res.index]
		switch {
		case res.err == nil:
			out.Skipped = false
			out.Offers = len(res.offers)
			collected[res.index] = res.offers
			if w.enoughAccepted(collected, plan) {
				log.Debug().Int("candidate", res.index).Msg("Result cap reached, stopping dispatch")
				stop()
			}
		case errors.Is(res.err, domain.ErrInvalidQuery):
			// A malformed query recurs for every candidate; continuing
			// only burns rate-limit budget.
			out.Skipped = false
			if failureCause == "" {
				failureCause = fmt.Sprintf("candidate %s: %v", candidates[res.index], res.err)
				log.Error().
					Str("candidate", candidates[res.index].String()).
					Err(res.err).
					Msg("Provider rejected query, aborting run")
			}
			stop()
			cancel()
		case errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded):
			// Aborted mid-flight by the budget or a fatal sibling; the
			// candidate was never fully queried.
		default:
			// ErrProviderUnavailable and anything unclassified: zero
			// offers for this candidate, run continues.
			out.Skipped = false
			out.Unavailable = true
			log.Warn().
				Str("candidate", candidates[res.index].String()).
				Err(res.err).
				Msg("Candidate unavailable, continuing")
		}
	}

	run.Outcomes = outcomes
	final := Evaluate(flatten(collected), plan)
	run.Results = final.Accepted
	run.Rejections = final.RejectionCounts()
	run.FinishedAt = w.clock.Now()

	if failureCause != "" {
		run.Status = domain.RunFailed
		run.FailureCause = failureCause
		return run, nil
	}

	// Zero accepted offers is a valid outcome, not a failure.
	run.Status = domain.RunCompleted
	log.Info().
		Int("searched", run.CandidatesSearched()).
		Int("accepted", len(run.Results)).
		Int("rejected", len(final.Rejected)).
		Msg("Search run completed")
	return run, nil
}

// fail finalizes a run that never started querying.
func (w *watcher) fail(run *domain.SearchRun, cause string) *domain.SearchRun {
	run.Status = domain.RunFailed
	run.FailureCause = cause
	run.FinishedAt = w.clock.Now()
	return run
}

// budgetExhausted reports whether the remaining deadline cannot fit another
// query cycle. Without a deadline the budget never runs out.
func (w *watcher) budgetExhausted(ctx context.Context) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return false
	}
	return time.Until(deadline) < w.queryBudget
}

// enoughAccepted reports whether the offers collected so far already fill
// the result cap. Dispatching may stop, but the final ranking is still
// recomputed over everything collected — "best seen so far", not "first
// found".
func (w *watcher) enoughAccepted(collected [][]domain.Offer, plan domain.SearchPlan) bool {
	eval := Evaluate(flatten(collected), plan)
	return len(eval.Accepted) >= plan.MaxResults
}

// flatten concatenates per-candidate offers in generator order.
func flatten(collected [][]domain.Offer) []domain.Offer {
	var all []domain.Offer
	for _, offers := range collected {
		all = append(all, offers...)
	}
	return all
}

// Ensure watcher implements FlightWatcher at compile time.
var _ FlightWatcher = (*watcher)(nil)
