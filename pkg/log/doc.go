// Package log provides the logging abstraction used by feedship components.
//
// Components depend on the small [Logger] interface rather than on a concrete
// logging library. A zerolog-backed implementation writes human-readable
// lines to stdout, and [NoopLogger] discards everything for tests.
//
// # Usage
//
//	logger := log.NewConsoleLogger(os.Stdout, "info")
//	logger.Info("sales.csv has been downloaded.", log.Feed("sales"))
//
// Implement [Logger] to route messages into an existing logging setup.
package log
