// Package pipeline runs the OpenMP analysis over a batch of snapshot files.
//
// Snapshots are loaded one after another into a shared source.FileSet, then
// every file is analysed on its own goroutine with its own diag.Bag. Progress
// is reported through a Sink so that the CLI can drive a progress view.
package pipeline
