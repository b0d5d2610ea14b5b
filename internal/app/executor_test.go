package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
)

func TestExecute_RunsStepsInOrder(t *testing.T) {
	var steps []string

	op := Operation[int, int, int, string]{
		Name: "double",
		Validate: func(_ context.Context, in int) error {
			steps = append(steps, "validate")
			return nil
		},
		Perform: func(_ context.Context, in int) (int, error) {
			steps = append(steps, "perform")
			return in * 2, nil
		},
		Verify: func(_ context.Context, _ int, p int) (int, error) {
			steps = append(steps, "verify")
			return p, nil
		},
		Archive: func(_ context.Context, _ int, _ int) error {
			steps = append(steps, "archive")
			return nil
		},
		Respond: func(_ context.Context, _ int, v int) (string, error) {
			steps = append(steps, "respond")
			return "ok", nil
		},
	}

	out, err := Execute(context.Background(), NewExecutor(discardLogger(), nil), op, 21)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"validate", "perform", "verify", "archive", "respond"}, steps)
}

func TestExecute_PassThroughWithoutVerifyOrRespond(t *testing.T) {
	op := Operation[int, int, int, int]{
		Name:    "identity",
		Perform: func(_ context.Context, in int) (int, error) { return in, nil },
	}

	out, err := Execute(context.Background(), NewExecutor(nil, nil), op, 5)

	require.NoError(t, err)
	assert.Equal(t, 5, out)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	boom := domain.NewUnavailableError("quotation-backend", "timeout")

	tests := []struct {
		name string
		op   Operation[int, int, int, int]
		step ExecutionStep
	}{
		{
			name: "validate",
			op: Operation[int, int, int, int]{
				Validate: func(context.Context, int) error { return boom },
				Perform: func(context.Context, int) (int, error) {
					panic("perform must not run")
				},
			},
			step: StepValidate,
		},
		{
			name: "perform",
			op: Operation[int, int, int, int]{
				Perform: func(context.Context, int) (int, error) { return 0, boom },
			},
			step: StepPerform,
		},
		{
			name: "verify",
			op: Operation[int, int, int, int]{
				Verify: func(context.Context, int, int) (int, error) { return 0, boom },
			},
			step: StepVerify,
		},
		{
			name: "archive",
			op: Operation[int, int, int, int]{
				Archive: func(context.Context, int, int) error { return boom },
			},
			step: StepArchive,
		},
		{
			name: "respond",
			op: Operation[int, int, int, int]{
				Respond: func(context.Context, int, int) (int, error) { return 0, boom },
			},
			step: StepRespond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.op.Name = "op"

			_, err := Execute(context.Background(), NewExecutor(discardLogger(), nil), tt.op, 1)

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err), "domain error must stay reachable")

			step, ok := FailedStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
			assert.Contains(t, err.Error(), "op: "+string(tt.step)+" failed")
		})
	}
}

func TestExecute_PrefersContextLogger(t *testing.T) {
	var buf bytes.Buffer

	ctxLogger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.WithRequestID(logging.WithContext(context.Background(), ctxLogger), "req-1")

	op := Operation[int, int, int, int]{Name: "noop"}

	_, err := Execute(ctx, NewExecutor(discardLogger(), nil), op, 0)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"operation":"noop"`)
}

func TestFailedStep(t *testing.T) {
	_, ok := FailedStep(errors.New("plain"))
	assert.False(t, ok)

	assert.Equal(t, "ok", failedStep(nil))
	assert.Equal(t, "unknown", failedStep(errors.New("plain")))
	assert.Equal(t, "verify", failedStep(&ExecutionError{Step: StepVerify}))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.observeOperation("op", "ok", 0)
		m.observeFilter(10, 5, 1)
		m.observeCreated("THB")
	})
}
