// Package testutil holds small test helpers shared across pkg/... test
// files, in place of an assertion library the pack's audio-plugin
// teachers never import.
package testutil

import "math"

// CloseEnough reports whether a and b differ by no more than tolerance.
func CloseEnough(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
