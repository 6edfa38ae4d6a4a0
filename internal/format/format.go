// Package format holds display helpers for prices, timestamps and
// other storefront strings.
package format

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var enIN = message.NewPrinter(language.MustParse("en-IN"))

// Price renders an amount in rupees with Indian digit grouping, e.g.
// ₹1,23,456.
func Price(amount float64) string {
	return enIN.Sprintf("₹%v", number.Decimal(amount))
}

// DiscountPercent is the rounded percentage saved off the MRP. Zero
// when there is no discount.
func DiscountPercent(mrp, price float64) int {
	if mrp <= price || mrp == 0 {
		return 0
	}
	return int(math.Round((mrp - price) / mrp * 100))
}

// Date renders a day like "2 Sep 2026".
func Date(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// Clock renders a wall-clock time like "02:05 pm".
func Clock(t time.Time) string {
	return t.Format("03:04 pm")
}

// MessageTime renders a chat message timestamp (epoch milliseconds)
// for display. Same-day messages show only the clock.
func MessageTime(ms int64, now time.Time) string {
	t := time.UnixMilli(ms).In(now.Location())
	if sameDay(t, now) {
		return Clock(t)
	}
	return Date(t) + " " + Clock(t)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Relative renders how long ago a timestamp (epoch milliseconds) was,
// coarsely.
func Relative(ms int64, now time.Time) string {
	elapsed := now.Sub(time.UnixMilli(ms))
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return enIN.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return enIN.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return enIN.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}

// PhoneNumber renders a 10-digit Indian mobile number with the country
// code. Anything else passes through untouched.
func PhoneNumber(phone string) string {
	if len(phone) == 10 {
		return "+91 " + phone[:5] + " " + phone[5:]
	}
	return phone
}

// Truncate shortens text to at most maxLength runes, appending an
// ellipsis when it was cut.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
