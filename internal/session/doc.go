// Package session exposes the command surface a presentation layer drives.
//
// A Session owns one in-memory run: inventory refreshes, marking, filter
// predicates, range resolution, the mute guard, and the batch pass. Every
// user-triggered mutation is a named method returning the recomputed view,
// decoupled from any input-binding mechanism. Prompting the operator is the
// presentation layer's job; the session only exposes the predicates those
// prompts need.
package session
