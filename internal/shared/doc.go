// Package shared holds code used across packages that belongs to no single
// pipeline stage.
//
// The testutil subpackage provides deterministic shipment fixtures and a
// log-capturing slog handler for tests:
//
//	func TestSomething(t *testing.T) {
//	    input := testutil.WriteShipments(t, 100)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "Pipeline warning")
//	}
package shared
