package exporter

import (
	"fmt"
	"strconv"

	"shiprisk/pkg/contracts/domain"
)

// formatNumber prints a statistic with fixed precision, NaN for undefined values
func formatNumber(n domain.Number, precision int) string {
	if !n.Defined() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(n), 'f', precision, 64)
}

// formatPValue switches to scientific notation for very small p-values
func formatPValue(n domain.Number) string {
	if !n.Defined() {
		return "NaN"
	}
	if n != 0 && n < 1e-4 {
		return strconv.FormatFloat(float64(n), 'e', 2, 64)
	}
	return strconv.FormatFloat(float64(n), 'f', 4, 64)
}

// formatPercent renders a rate in [0,1] as a percentage
func formatPercent(n domain.Number) string {
	if !n.Defined() {
		return "NaN"
	}
	return fmt.Sprintf("%.2f%%", float64(n)*100)
}

// formatMoney renders whole USD with thousands separators
func formatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + "$" + string(out)
}

// formatInt formats an integer count
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
