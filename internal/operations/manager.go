package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"laptopstats/internal/infrastructure"
)

// Manager runs the registered steps of an analysis in dependency order,
// stopping at the first failure
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. A nil telemetry runs the steps
// untraced.
func NewManager(registry *Registry, telemetry *infrastructure.Telemetry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		tracer:   NewOperationTracer(telemetry),
		logger:   logger,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered Step against state. Disabled steps, and
// steps whose dependencies did not complete, are skipped. The returned error
// is an *OperationError naming the failing Step.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		m.logOperationError(ctx, state.ID, err)
		state.Fail(err)
		return err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state)
	state.Start()
	m.logOperationStart(ctx, state, len(steps))

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state, err)
	if err != nil {
		m.logOperationError(ctx, state.ID, err)
	}
	m.logOperationComplete(ctx, state)
	return err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			return NewCancellationError(step.ID(), err)
		}

		stepState := state.GetStage(step.ID())
		reason := m.checkDependencies(state, step)
		if reason == "" {
			reason = step.SkipReason(state)
		}
		if reason != "" {
			stepState.Skip(reason)
			m.tracer.RecordStageSkipped(ctx, step.ID(), reason)
			m.logStageSkipped(ctx, state.ID, step.ID(), reason)
			continue
		}

		m.logStageStart(ctx, state.ID, step.ID(), i+1, len(steps))
		if err := m.executeStage(ctx, state, step, stepState); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single Step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step, stepState *StepState) error {
	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		verr := NewValidationError(step.ID(), "Step validation failed")
		verr.Cause = err
		return verr
	}

	stageCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step)
	stepState.Start()
	start := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		if ctx.Err() != nil {
			return NewCancellationError(step.ID(), err)
		}
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// checkDependencies returns why step cannot run, or "" when every
// dependency completed
func (m *Manager) checkDependencies(state *OperationState, step Step) string {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return fmt.Sprintf("dependency %s not found", dep)
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return fmt.Sprintf("dependency %s %s", dep, status)
		}
	}
	return ""
}
