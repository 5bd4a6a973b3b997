package money

import "github.com/shopspring/decimal"

// Round2 округляет сумму до копеек (half away from zero).
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum складывает значения без накопления ошибки float64.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Percent возвращает base * percent / 100.
func Percent(base, percent float64) float64 {
	return decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
}

// Ratio делит a на b, при b == 0 возвращает 0.
func Ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).InexactFloat64()
}
