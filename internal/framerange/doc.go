// Package framerange computes the normalized [start, end] bake interval.
//
// Three strategies are supported: candidate head/tail attributes, the host's
// current window, and manual entry. All finish with symmetric padding and
// min/max normalization. Attribute reading goes through an ordered reader
// chain so hosts with several attribute locations try each in turn.
package framerange
