package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
)

// Use cases run as five ordered steps:
//
//  1. validate: reject bad input before any backend call
//  2. perform:  fetch from or submit to the backend
//  3. verify:   check what came back before trusting it
//  4. archive:  record the verified outcome (metrics, audit log)
//  5. respond:  shape the result for the caller
//
// A failure stops the run at that step. Every step is optional.

// ExecutionStep names a step of an operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation failed in.
// Domain errors stay reachable through Unwrap.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Message   string
	Cause     error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s failed: %s: %v", e.Operation, e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s failed: %s", e.Operation, e.Step, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation wires the step functions of one use case.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Executor runs operations, logging each step and reporting the outcome
// to Metrics when one is set.
type Executor struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewExecutor creates an executor. Both arguments may be nil.
func NewExecutor(logger *slog.Logger, metrics *Metrics) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, metrics: metrics}
}

type run[I, P, V, O any] struct {
	logger *slog.Logger
	op     Operation[I, P, V, O]
	input  I
}

func (r *run[I, P, V, O]) fail(ctx context.Context, step ExecutionStep, message string, err error) error {
	level := slog.LevelError
	if step == StepValidate {
		level = slog.LevelWarn
	}

	r.logger.Log(ctx, level, message, slog.String("step", string(step)), slog.Any("error", err))

	return &ExecutionError{Operation: r.op.Name, Step: step, Message: message, Cause: err}
}

func (r *run[I, P, V, O]) validate(ctx context.Context) error {
	if r.op.Validate == nil {
		return nil
	}

	if err := r.op.Validate(ctx, r.input); err != nil {
		return r.fail(ctx, StepValidate, "invalid input", err)
	}

	r.logger.DebugContext(ctx, "input validated")

	return nil
}

func (r *run[I, P, V, O]) perform(ctx context.Context) (P, error) {
	var zero P

	if r.op.Perform == nil {
		return zero, nil
	}

	performed, err := r.op.Perform(ctx, r.input)
	if err != nil {
		return zero, r.fail(ctx, StepPerform, "backend call failed", err)
	}

	r.logger.DebugContext(ctx, "operation performed")

	return performed, nil
}

func (r *run[I, P, V, O]) verify(ctx context.Context, performed P) (V, error) {
	var zero V

	if r.op.Verify == nil {
		// Without a verifier P and V must be the same type.
		if v, ok := any(performed).(V); ok {
			return v, nil
		}

		return zero, nil
	}

	verified, err := r.op.Verify(ctx, r.input, performed)
	if err != nil {
		return zero, r.fail(ctx, StepVerify, "result rejected", err)
	}

	r.logger.DebugContext(ctx, "result verified")

	return verified, nil
}

func (r *run[I, P, V, O]) archive(ctx context.Context, verified V) error {
	if r.op.Archive == nil {
		return nil
	}

	if err := r.op.Archive(ctx, r.input, verified); err != nil {
		return r.fail(ctx, StepArchive, "recording outcome failed", err)
	}

	return nil
}

func (r *run[I, P, V, O]) respond(ctx context.Context, verified V) (O, error) {
	var zero O

	if r.op.Respond == nil {
		if o, ok := any(verified).(O); ok {
			return o, nil
		}

		return zero, nil
	}

	result, err := r.op.Respond(ctx, r.input, verified)
	if err != nil {
		return zero, r.fail(ctx, StepRespond, "shaping response failed", err)
	}

	return result, nil
}

// Execute runs op against input. The request-scoped logger from ctx is
// preferred over the executor's own.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (result O, err error) {
	logger := exec.logger
	if logging.HasLogger(ctx) {
		logger = logging.FromContext(ctx)
	}

	r := &run[I, P, V, O]{
		logger: logger.With(slog.String("operation", op.Name)),
		op:     op,
		input:  input,
	}

	start := time.Now()

	defer func() {
		exec.metrics.observeOperation(op.Name, failedStep(err), time.Since(start))
	}()

	if err = r.validate(ctx); err != nil {
		return result, err
	}

	performed, err := r.perform(ctx)
	if err != nil {
		return result, err
	}

	verified, err := r.verify(ctx, performed)
	if err != nil {
		return result, err
	}

	if err = r.archive(ctx, verified); err != nil {
		return result, err
	}

	result, err = r.respond(ctx, verified)
	if err != nil {
		return result, err
	}

	r.logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// FailedStep returns the step an operation error came from.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

func failedStep(err error) string {
	if err == nil {
		return "ok"
	}

	if step, ok := FailedStep(err); ok {
		return string(step)
	}

	return "unknown"
}
