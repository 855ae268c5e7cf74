// Package shared provides common utilities and test helpers used across the
// analyzer packages.
//
// # Structure
//
// - testutil: laptop dataset fixtures and a capturing slog handler
//
// # Usage Guidelines
//
// testutil depends on the standard library only, so any package, including
// dataprocessing itself, can use it from its tests without an import cycle.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    path := testutil.WriteLaptopsCSV(t, t.TempDir())
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    testutil.AssertLogged(t, logs, slog.LevelInfo, "Step completed")
//	}
package shared
