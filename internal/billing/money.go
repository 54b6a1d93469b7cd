package billing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts are settled at centavo precision. Anything below half a centavo
// is float64 noise, not money.
const centEpsilon = 0.005

// RoundCents snaps an amount to two decimal places so accumulated float64
// error never leaks into settlement decisions.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands grouping and two decimals,
// the way it appears on statements and exports.
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
