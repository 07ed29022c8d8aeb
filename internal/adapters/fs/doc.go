// Package fs implements the local filesystem adapters: staging datasets as
// CSV files, removing them after upload, persisting the last batch report
// and guarding runs with an advisory lock file.
package fs
