// Package domain contains the core entities of feedship.
//
// It has no dependencies on infrastructure concerns (HTTP, FTP, file system,
// logging) and holds only the data shapes and rules shared by every layer.
//
// # Entities
//
//   - [Feed]: one named source from the feeds file
//   - [Dataset]: tabular data fetched for one feed
//   - [FeedResult]: the outcome of processing one feed
//   - [BatchReport]: every FeedResult of one run, plus a fatal error if any
package domain
