package dis

import (
	"math"
	"strconv"
	"strings"
)

var escaper = strings.NewReplacer(
	`"`, `\"`,
	"\r", `\r`,
	"\n", `\n`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// escape prepares s for use inside a quoted hasm string or comment. Only a
// trailing backslash is doubled; other backslashes are left as they are.
func escape(s string) string {
	if strings.HasSuffix(s, `\`) {
		s += `\`
	}
	return escaper.Replace(s)
}

func quote(s string) string {
	return `"` + s + `"`
}

func comment(s string) string {
	return "/* " + s + " */"
}

// FormatNumber formats v the way JavaScript's Number#toString does.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + exp
}
