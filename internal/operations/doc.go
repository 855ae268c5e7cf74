// Package operations runs a laptop price analysis as an ordered series of
// steps over a shared OperationState.
//
// Core Components:
//
// Manager: orders the registered steps by their dependencies and runs them
// one at a time. Each Step gets its own trace span and duration metric. A
// Step that reports a SkipReason, or whose dependency did not complete, is
// skipped; the first failing Step stops the run.
//
// Step: one unit of work (load, clean, analyze, report, charts, the three
// exports, open). Steps hand data to each other through OperationState.
//
// Registry: holds the steps and sorts them topologically, keeping
// registration order among steps that become runnable together.
//
// Example usage:
//
//	registry, err := operations.NewAnalysisRegistry(operations.StepOptions{
//		Logger:  logger,
//		Metrics: telemetry.Metrics,
//	})
//	if err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, telemetry, logger)
//	state := operations.NewOperationState(runID, cfg)
//	if err := manager.Execute(ctx, state); err != nil {
//		return err
//	}
package operations
