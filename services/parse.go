package services

import "github.com/spf13/cast"

// Request bodies frequently carry numbers as strings. These helpers coerce
// instead of rejecting: a blank or garbled field becomes the fallback rather
// than a 500.

// ParseNumberOr converts v to a float64, returning fallback when it cannot.
func ParseNumberOr(v any, fallback float64) float64 {
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return fallback
	}
	return n
}

// ParseIntOr converts v to an int, returning fallback when it cannot.
func ParseIntOr(v any, fallback int) int {
	n, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}
	return n
}

// ParseQuantity coerces v into a usable line quantity: unparsable or
// non-positive values become 1.
func ParseQuantity(v any) int {
	n := ParseIntOr(v, 1)
	if n <= 0 {
		return 1
	}
	return n
}
