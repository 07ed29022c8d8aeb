// Package feedship provides an embeddable runner for scheduled CSV feed
// delivery.
//
// Each run reads the feeds file, opens one FTPS session, and for every feed
// fetches the source, stages it as <name>.csv, uploads it and removes the
// local copy. A failing feed is recorded and skipped; the rest of the batch
// continues.
//
// # Basic Usage
//
//	runner, err := feedship.New(feedship.Config{
//	    FeedsFile: "config.json",
//	    WorkDir:   "/var/lib/feedship",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Once:
//	report, err := runner.RunOnce(ctx)
//
//	// Or every day at Config.ScheduleAt until ctx is cancelled:
//	err = runner.RunScheduled(ctx)
//
// # Credentials
//
// FTPHOST, FTPUSER and FTPPASS are read from the process environment, falling
// back to Config.EnvFile. Use [WithCredentials] to supply another source.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler]) and pass it via
// [WithEventHandler]. Events are called synchronously from the run.
//
// # Dependency Injection
//
// For testing, inject the HTTP client, the transfer dialer and the clock:
//
//	runner, err := feedship.New(cfg,
//	    feedship.WithHTTPClient(srv.Client()),
//	    feedship.WithDialer(fakeDialer),
//	    feedship.WithLogger(logger),
//	)
package feedship
