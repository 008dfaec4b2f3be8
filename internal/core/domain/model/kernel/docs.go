// Package kernel holds the value objects shared by every aggregate of the
// delivery core: identifiers, geographic locations and actor roles.
//
// Values are immutable and their zero values are invalid; construct them with
// the New* / *From* functions and call Validate on values that crossed a
// persistence or transport boundary.
package kernel
