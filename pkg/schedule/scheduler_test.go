package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/hclpipeline"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/pipeline"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, meta pipeline.Metadata, req models.PipelineRequest) (*pipeline.Outcome, error) {
	args := m.Called(ctx, meta, req)

	outcome, _ := args.Get(0).(*pipeline.Outcome)

	return outcome, args.Error(1)
}

func TestScheduler_AddFunc(t *testing.T) {
	s := NewScheduler(&mockRunner{}, slog.Default())

	require.NoError(t, s.AddFunc("reload", "@hourly", func(context.Context) error { return nil }))
	require.NoError(t, s.AddFunc("nightly", "0 3 * * *", func(context.Context) error { return nil }))

	assert.Equal(t, []string{"nightly", "reload"}, s.Jobs())

	err := s.AddFunc("reload", "@daily", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateJob)

	err = s.AddFunc("broken", "every tuesday", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.NotContains(t, s.Jobs(), "broken")
}

func TestScheduler_AddPipelineWithoutSchedule(t *testing.T) {
	s := NewScheduler(&mockRunner{}, slog.Default())

	err := s.AddPipeline(&hclpipeline.Pipeline{Name: "adhoc"})
	assert.ErrorIs(t, err, ErrNoSchedule)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_Next(t *testing.T) {
	s := NewScheduler(&mockRunner{}, slog.Default())
	require.NoError(t, s.AddFunc("reload", "@every 1h", func(context.Context) error { return nil }))

	s.Start(t.Context())
	defer func() { assert.NoError(t, s.Stop(context.Background())) }()

	next, ok := s.Next("reload")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)

	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestScheduler_RunsPipelines(t *testing.T) {
	req := models.PipelineRequest{Steps: []models.NodeDescriptor{{Name: "LoadTitanic"}}}

	var runs atomic.Int32

	runner := &mockRunner{}
	runner.On("Run", mock.Anything, pipeline.Metadata{Pipeline: "every-second", Source: events.SourceSchedule}, req).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return(&pipeline.Outcome{RunID: "run"}, nil)

	s := NewScheduler(runner, slog.Default())
	require.NoError(t, s.AddPipeline(&hclpipeline.Pipeline{Name: "every-second", Schedule: "@every 1s", Request: req}))

	s.Start(t.Context())

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	runner.AssertExpectations(t)
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	var calls atomic.Int32

	s := NewScheduler(&mockRunner{}, slog.Default())
	require.NoError(t, s.AddFunc("flaky", "@every 1s", func(context.Context) error {
		calls.Add(1)

		return errors.New("boom")
	}))

	s.Start(t.Context())

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	s := NewScheduler(&mockRunner{}, slog.Default())
	require.NoError(t, s.AddFunc("long", "@every 1s", func(ctx context.Context) error {
		select {
		case <-started:
			return nil
		default:
			close(started)
		}

		<-ctx.Done()
		close(cancelled)

		return ctx.Err()
	}))

	s.Start(t.Context())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	require.NoError(t, s.Stop(context.Background()))

	select {
	case <-cancelled:
	default:
		t.Fatal("job context was not cancelled")
	}
}
