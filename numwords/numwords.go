// Package numwords renders rupee amounts as English phrases using the
// Indian numbering system (hundred, thousand, lakh, crore), as printed on
// payment receipts.
package numwords

import "strings"

var ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen",
	"Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}

var tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty",
	"Seventy", "Eighty", "Ninety"}

// twoDigits renders 1-99.
func twoDigits(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}

// Words renders a non-negative integer in Indian grouping. Words(0) is
// "Zero".
func Words(n int64) string {
	if n == 0 {
		return "Zero"
	}
	var parts []string
	if c := n / 10000000; c > 0 {
		parts = append(parts, Words(c), "Crore")
		n %= 10000000
	}
	if l := n / 100000; l > 0 {
		parts = append(parts, twoDigits(l), "Lakh")
		n %= 100000
	}
	if t := n / 1000; t > 0 {
		parts = append(parts, twoDigits(t), "Thousand")
		n %= 1000
	}
	if h := n / 100; h > 0 {
		parts = append(parts, ones[h], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, twoDigits(n))
	}
	return strings.Join(parts, " ")
}

// FromPaise renders an amount held as integer paise, e.g. 150050 paise is
// "One Thousand Five Hundred Rupees and Fifty Paise Only". A zero amount is
// "Zero".
func FromPaise(total int64) string {
	rupees := total / 100
	paise := total % 100
	if rupees == 0 && paise == 0 {
		return "Zero"
	}
	var b strings.Builder
	if rupees > 0 {
		b.WriteString(Words(rupees))
		b.WriteString(" Rupees")
	}
	if paise > 0 {
		if rupees > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(twoDigits(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}
