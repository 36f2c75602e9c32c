package journal

import "strconv"

func formatPrice(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
