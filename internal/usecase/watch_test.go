package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/farewatch/farewatch/internal/domain"
)

func watchPlan() domain.SearchPlan {
	return domain.SearchPlan{
		Origin:               "SFO",
		Destination:          "OGG",
		StartDate:            "2025-07-31",
		StartDateFlexibility: 3,
		StayDuration:         domain.StayDuration{MinDays: 7, MaxDays: 8},
		MaxPrice:             600,
		Currency:             "USD",
		Adults:               1,
		MaxResults:           5,
	}
}

// offersForCandidate returns one affordable nonstop offer and one offer over
// the price ceiling, both tagged with the candidate's dates.
func offersForCandidate(c domain.DateCandidate) []domain.Offer {
	cheap := offer("cheap-"+c.String(), 550, 0, 4)
	pricey := offer("pricey-"+c.String(), 900, 0, 4)
	return []domain.Offer{cheap, pricey}
}

func TestWatcher_Run_CompletedWithRankedResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	plan := watchPlan()
	candidates, err := domain.ExpandDateWindow(plan)
	require.NoError(t, err)
	require.Len(t, candidates, 14)

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
			return offersForCandidate(c), nil
		}).
		AnyTimes()

	w := NewWatcher(client, &Config{Workers: 1})
	run, err := w.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.NotEmpty(t, run.ID)
	assert.Len(t, run.Candidates, 14)
	assert.True(t, run.IsTerminal())

	// Every affordable offer ties on (price, stops), so the winners are the
	// cheap offers of the first five candidates in generator order.
	require.Len(t, run.Results, 5)
	for i, res := range run.Results {
		assert.Equal(t, "cheap-"+candidates[i].String(), res.ID)
		assert.InDelta(t, 550.0, res.Price, 0.001)
		assert.True(t, res.Accepted)
	}
	assert.Positive(t, run.Rejections[domain.ReasonPriceExceeded])
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestWatcher_Run_GeneratorOrderSurvivesConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	plan := watchPlan()
	plan.MaxResults = 14
	candidates, err := domain.ExpandDateWindow(plan)
	require.NoError(t, err)

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
			return []domain.Offer{offer("cheap-"+c.String(), 550, 0, 4)}, nil
		}).
		Times(14)

	w := NewWatcher(client, &Config{Workers: 4})
	run, err := w.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	require.Len(t, run.Results, 14)
	for i, res := range run.Results {
		assert.Equal(t, "cheap-"+candidates[i].String(), res.ID)
	}
}

func TestWatcher_Run_AllCandidatesUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrProviderUnavailable).
		Times(14)

	w := NewWatcher(client, &Config{Workers: 2})
	run, err := w.Run(context.Background(), watchPlan())

	require.NoError(t, err)
	// A run where no candidate could be queried still completes; emptiness
	// is an answer.
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Empty(t, run.Results)
	assert.Empty(t, run.FailureCause)
	assert.Equal(t, 14, run.CandidatesSearched())
	for _, out := range run.Outcomes {
		assert.True(t, out.Unavailable)
		assert.False(t, out.Skipped)
	}
}

func TestWatcher_Run_MixedAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	plan := watchPlan()
	candidates, err := domain.ExpandDateWindow(plan)
	require.NoError(t, err)

	// Odd-indexed candidates fail transiently; even ones return one offer.
	byDeparture := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		byDeparture[c.String()] = i%2 == 1
	}

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
			if byDeparture[c.String()] {
				return nil, domain.ErrProviderUnavailable
			}
			return []domain.Offer{offer("cheap-"+c.String(), 550, 0, 4)}, nil
		}).
		Times(14)

	plan.MaxResults = 14
	w := NewWatcher(client, &Config{Workers: 2})
	run, err := w.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Len(t, run.Results, 7)
	for i, out := range run.Outcomes {
		assert.Equal(t, i%2 == 1, out.Unavailable, "candidate %d", i)
	}
}

func TestWatcher_Run_InvalidQueryAbortsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrInvalidQuery).
		MinTimes(1)

	w := NewWatcher(client, &Config{Workers: 1})
	run, err := w.Run(context.Background(), watchPlan())

	// Mid-run failures surface through the run, not the error return.
	require.NoError(t, err)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Contains(t, run.FailureCause, domain.ErrInvalidQuery.Error())
	assert.Contains(t, run.FailureCause, "candidate")
	assert.True(t, run.IsTerminal())
}

func TestWatcher_Run_InvalidPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	plan := watchPlan()
	plan.Origin = "SFOX"

	// No Search expectations: an invalid plan must never reach the provider.
	client := domain.NewMockOfferClient(ctrl)

	w := NewWatcher(client, nil)
	run, err := w.Run(context.Background(), plan)

	require.ErrorIs(t, err, domain.ErrInvalidPlan)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.NotEmpty(t, run.FailureCause)
	assert.Empty(t, run.Candidates)
}

func TestWatcher_Run_EarlyCompletionStopsDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	plan := watchPlan()
	plan.MaxResults = 1

	var calls atomic.Int64
	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
			calls.Add(1)
			// Slow enough for the collector to see each result before the
			// next query completes.
			time.Sleep(10 * time.Millisecond)
			return []domain.Offer{offer("cheap-"+c.String(), 550, 0, 4)}, nil
		}).
		AnyTimes()

	w := NewWatcher(client, &Config{Workers: 1})
	run, err := w.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	require.Len(t, run.Results, 1)
	assert.Less(t, int(calls.Load()), 14, "dispatch should stop once the result cap is filled")
}

func TestWatcher_Run_TimeBudgetExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Search expectations: a deadline smaller than one query budget
	// means nothing gets dispatched.
	client := domain.NewMockOfferClient(ctrl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := NewWatcher(client, &Config{Workers: 2, QueryBudget: 15 * time.Second})
	run, err := w.Run(ctx, watchPlan())

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Empty(t, run.Results)
	assert.Equal(t, 0, run.CandidatesSearched())
	for _, out := range run.Outcomes {
		assert.True(t, out.Skipped)
	}
}

func TestWatcher_Run_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := domain.NewMockOfferClient(ctrl)
	client.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
			return offersForCandidate(c), nil
		}).
		AnyTimes()

	w := NewWatcher(client, &Config{Workers: 1})

	first, err := w.Run(context.Background(), watchPlan())
	require.NoError(t, err)
	second, err := w.Run(context.Background(), watchPlan())
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].ID, second.Results[i].ID)
		assert.Equal(t, first.Results[i].Price, second.Results[i].Price)
	}
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNewWatcher_ClampsWorkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := domain.NewMockOfferClient(ctrl)

	tests := []struct {
		name string
		cfg  *Config
		want int
	}{
		{name: "nil config uses default", cfg: nil, want: DefaultWorkers},
		{name: "zero uses default", cfg: &Config{Workers: 0}, want: DefaultWorkers},
		{name: "within bounds kept", cfg: &Config{Workers: 3}, want: 3},
		{name: "above max clamped", cfg: &Config{Workers: 9}, want: MaxWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatcher(client, tt.cfg).(*watcher)
			assert.Equal(t, tt.want, w.workers)
		})
	}
}
