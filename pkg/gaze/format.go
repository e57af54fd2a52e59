package gaze

import (
	"strconv"
	"strings"

	"github.com/papercomputeco/gazetap/pkg/imotions"
)

// FormatFloat renders f in shortest round-trip form, always marking it as a
// float: integral values keep a ".0" suffix and magnitudes below 1e-4 or at
// or above 1e16 switch to exponent form with a signed two-digit exponent
// ("0.5", "-1.0", "1e-05", "1.5e+16"). The output does not depend on locale.
func FormatFloat(f float64) string {
	sci := strconv.FormatFloat(f, 'e', -1, 64)

	// sci is "[-]d[.ddd]e±XX"; the exponent decides the notation.
	mark := strings.LastIndexByte(sci, 'e')
	exp, err := strconv.Atoi(sci[mark+1:])
	if err != nil {
		// NaN and Inf have no exponent.
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatNumber renders a pass-through value in the form it arrived in:
// integer literals as integers, everything else through FormatFloat.
func FormatNumber(n imotions.Number) string {
	if n.IsInteger() {
		return n.String()
	}
	return FormatFloat(n.Float64())
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
