package stocks

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatQuote renders the chat reply for one fetched quote.
func FormatQuote(q *Quote) string {
	marker := "🟢"
	sign := "+"
	if q.Change < 0 {
		marker = "🔴"
		sign = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s (%s)\n\n", q.Name, q.Symbol)
	fmt.Fprintf(&b, "💰 Price: $%.2f\n", q.Price)
	fmt.Fprintf(&b, "%s Change: %s$%.2f (%s%.2f%%)\n", marker, sign, q.Change, sign, q.ChangePercent)
	fmt.Fprintf(&b, "📊 Volume: %s", groupDigits(q.Volume))

	if q.MarketCap != nil {
		fmt.Fprintf(&b, "\n🏢 Market Cap: $%.1fB", *q.MarketCap/1e9)
	}
	if q.PERatio != nil {
		fmt.Fprintf(&b, "\n📊 P/E Ratio: %.2f", *q.PERatio)
	}

	fmt.Fprintf(&b, "\n\n⏰ Updated: %s UTC", q.AsOf.Format("15:04:05"))
	return b.String()
}

// FormatError renders the failure reply for a ticker lookup.
func FormatError(ticker string, err error) string {
	return fmt.Sprintf("❌ Error fetching data for %s: %v", ticker, err)
}

// groupDigits formats n with thousands separators (12345678 -> "12,345,678").
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
