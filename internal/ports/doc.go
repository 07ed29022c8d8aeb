// Package ports defines the interfaces that connect the pipeline to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [FeedLoader]: Reads the feeds file
//   - [FeedSource]: Fetches a feed into a Dataset
//   - [Stager]: Writes a Dataset to a local CSV file
//   - [TransferDialer] / [TransferSession]: Uploads staged files
//   - [Cleaner]: Removes staged files
//   - [CredentialProvider]: Looks up transfer credentials
//   - [ReportRepository]: Persists the last batch report
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them.
package ports
