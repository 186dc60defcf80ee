// Package batch drives the sequential, cancellable processing pass.
//
// The runner owns no state beyond its collaborators: it consumes an ordered
// id list and a resolved interval, invokes the external processor one item at
// a time, and records a terminal status for every input id in the registry.
// Cancellation is cooperative and polled only at item boundaries; a failure
// inside one item never aborts the remainder of the pass.
package batch
