package models

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rialSuffix = " ریال"

var persianPrinter = message.NewPrinter(language.Persian)

// FormatRial renders an amount rounded to whole rials with Persian digit
// grouping, e.g. "۱۲۳٬۴۵۶ ریال".
func FormatRial(amount float64) string {
	return persianPrinter.Sprint(number.Decimal(math.Round(amount), number.MaxFractionDigits(0))) + rialSuffix
}
