package advisor

import (
	"math"
	"math/big"
	"strings"
)

// toFixed formats x with the given number of decimals, rounding exact ties away from zero
// (12.25 -> "12.3"). fmt's %.Nf rounds those ties to even.
func toFixed(x float64, digits int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "0." + strings.Repeat("0", digits)
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}

	// 200 bits hold any float64 times 10^digits exactly
	f := new(big.Float).SetPrec(200).SetFloat64(x)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))
	f.Mul(f, scale)
	f.Add(f, big.NewFloat(0.5))
	n, _ := f.Int(nil)

	s := n.String()
	if digits == 0 {
		return sign + s
	}
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	out := s[:len(s)-digits] + "." + s[len(s)-digits:]
	if strings.Trim(out, "0.") == "" {
		sign = ""
	}
	return sign + out
}
