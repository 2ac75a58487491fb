package tml

import (
	"math"
	"math/big"
	"strconv"
)

// FormatFloat formats a number the way results are displayed: the shortest
// decimal that parses back to the same value, never in exponent notation.
// Infinities are "inf" and "-inf".
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBig formats an arbitrary precision number like FormatFloat, with the
// fewest digits that identify it at its precision.
func FormatBig(v *big.Float) string {
	if v.IsInf() {
		if v.Signbit() {
			return "-inf"
		}
		return "inf"
	}
	return v.Text('f', -1)
}

func format(v float64, b *big.Float) string {
	if b != nil {
		return FormatBig(b)
	}
	return FormatFloat(v)
}
