// Package shared holds helpers used across the radarcli codebase that belong
// to no single domain or layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that captures records for assertions
//   - ChartTestFixtures, which writes sample text files and .xlsx workbooks
//   - Sample datasets (SampleTSV, SampleCSV, DegenerateTSV)
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    store := session.NewStore(logger)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
