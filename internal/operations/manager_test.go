package operations

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptopstats/internal/config"
	apperrors "laptopstats/internal/errors"
	"laptopstats/internal/infrastructure"
	"laptopstats/internal/shared/testutil"
)

func newTestManager(t *testing.T, steps ...Step) (*Manager, *testutil.LogCapture) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	m := NewManager(nil, nil, logger)
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m, logs
}

func TestManager_ExecuteSequential(t *testing.T) {
	var ran []string
	m, logs := newTestManager(t,
		newFakeStep("load", &ran),
		newFakeStep("clean", &ran, "load"),
		newFakeStep("analyze", &ran, "clean"),
	)
	state := NewOperationState("run-1", nil)

	require.NoError(t, m.Execute(context.Background(), state))

	assert.Equal(t, []string{"load", "clean", "analyze"}, ran)
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())
	for _, id := range ran {
		assert.Equal(t, StepStatusCompleted, state.GetStage(id).GetStatus(), id)
	}
	testutil.AssertLogged(t, logs, slog.LevelInfo, "operation_complete")
	testutil.AssertNoErrors(t, logs)
}

func TestManager_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	failing := newFakeStep("clean", &ran, "load")
	failing.err = apperrors.NewParsingError("bad Ram value", nil)

	m, logs := newTestManager(t,
		newFakeStep("load", &ran),
		failing,
		newFakeStep("analyze", &ran, "clean"),
		newFakeStep("unrelated", &ran, "load"),
	)
	state := NewOperationState("run-2", nil)

	err := m.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, []string{"load", "clean"}, ran)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Equal(t, "clean", FailedStep(err))
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err), "cause type survives wrapping")
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStage("clean").GetStatus())
	assert.Equal(t, StepStatusPending, state.GetStage("analyze").GetStatus())
	assert.Equal(t, StepStatusPending, state.GetStage("unrelated").GetStatus())
	testutil.AssertLogged(t, logs, slog.LevelError, "stage_error")
}

func TestManager_SkipsDisabledStepsAndDependents(t *testing.T) {
	var ran []string
	charts := newFakeStep("charts", &ran, "load")
	charts.skip = "charts disabled"

	m, logs := newTestManager(t,
		newFakeStep("load", &ran),
		charts,
		newFakeStep("open", &ran, "charts"),
		newFakeStep("export", &ran, "load"),
	)
	state := NewOperationState("run-3", nil)

	require.NoError(t, m.Execute(context.Background(), state))

	assert.Equal(t, []string{"load", "export"}, ran)
	chartsState := state.GetStage("charts")
	assert.Equal(t, StepStatusSkipped, chartsState.GetStatus())
	assert.Equal(t, "charts disabled", chartsState.Message)
	openState := state.GetStage("open")
	assert.Equal(t, StepStatusSkipped, openState.GetStatus())
	assert.Contains(t, openState.Message, "dependency charts skipped")
	assert.Equal(t, 2, countLogs(logs, "stage_skipped"))
}

func TestManager_ValidationFailure(t *testing.T) {
	var ran []string
	step := newFakeStep("load", &ran)
	step.validateErr = errors.New("no input path configured")
	m, _ := newTestManager(t, step)
	state := NewOperationState("run-4", nil)

	err := m.Execute(context.Background(), state)

	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Contains(t, err.Error(), "no input path configured")
	assert.Empty(t, ran)
	assert.Equal(t, StepStatusFailed, state.GetStage("load").GetStatus())
}

func TestManager_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	first := newFakeStep("load", &ran)
	first.run = func(context.Context, *OperationState) error {
		cancel()
		return nil
	}
	m, _ := newTestManager(t, first, newFakeStep("clean", &ran, "load"))
	state := NewOperationState("run-5", nil)

	err := m.Execute(ctx, state)

	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"load"}, ran)
	assert.Equal(t, OperationStatusCancelled, state.GetStatus())
}

func TestManager_DependencyCycle(t *testing.T) {
	m, _ := newTestManager(t,
		newFakeStep("a", nil, "b"),
		newFakeStep("b", nil, "a"),
	)
	state := NewOperationState("run-6", nil)

	err := m.Execute(context.Background(), state)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeDependency, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
}

func TestManager_RecordsStepMetrics(t *testing.T) {
	ctx := context.Background()
	tel, err := infrastructure.InitializeTelemetry(ctx, config.TelemetryConfig{TraceExporter: "none"}, t.TempDir(), nil)
	require.NoError(t, err)
	defer tel.Shutdown(ctx)

	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeStep("load", nil)))
	m := NewManager(registry, tel, slog.Default())

	require.NoError(t, m.Execute(ctx, NewOperationState("run-7", nil)))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, tel.WriteMetricsFile(path))
	content := testutil.ReadFile(t, path)
	assert.Contains(t, content, "pipeline_step_duration_seconds")
	assert.Contains(t, content, `step_id="load"`)
}

func countLogs(logs *testutil.LogCapture, msg string) int {
	n := 0
	for _, r := range logs.Records() {
		if r.Message == msg {
			n++
		}
	}
	return n
}
