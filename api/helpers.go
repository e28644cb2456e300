// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package api

import "github.com/mohae/deepcopy"

// deepCopyArguments returns a defensive deep copy of a job's Arguments map, so a
// JobView's derived-attribute computation never aliases the host-owned map. Returns
// nil for a nil input rather than an empty map, so "no arguments supplied" stays
// distinguishable from "supplied an empty map".
func deepCopyArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	return deepcopy.Copy(args).(map[string]any)
}

// toFloat coerces the numeric types that arrive through Arguments (populated from a
// decoded wire snapshot, so typically float64, int, or int64) into a float64. Anything
// else yields zero rather than panicking — a malformed argument is a modeling bug in the
// simulator, not a reason to crash the scheduler mid-tick.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
