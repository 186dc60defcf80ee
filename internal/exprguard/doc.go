// Package exprguard temporarily silences broken host expressions around a
// batch run.
//
// Broken references crash or spam the host during processing; the guard
// blanks their content before the run and puts the original text back
// afterwards. The backup is consumed by restore, so a second restore is a
// harmless no-op.
package exprguard
