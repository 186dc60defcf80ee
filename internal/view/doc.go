// Package view derives the operator-facing list from a registry snapshot.
//
// Everything here is a pure function of its inputs: no state, no host calls.
// The presentation layer recomputes the view after every registry mutation
// and re-maps its selection by id.
package view
