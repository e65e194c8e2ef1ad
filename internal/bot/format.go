package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// truncateAddress shortens a long address for display, keeping length
// characters on each side: "EPjFWd...TDt1v".
func truncateAddress(address string, length int) string {
	if len(address) <= length*2 {
		return address
	}
	return address[:length] + "..." + address[len(address)-length:]
}

// txLink renders a transaction signature as a Solscan URL.
func txLink(signature string) string {
	return "https://solscan.io/tx/" + signature
}

// photonLink renders a mint address as a Photon LP page URL.
func photonLink(address string) string {
	return "https://photon-sol.tinyastro.io/en/lp/" + address
}

// txDisplay renders a signature as a Markdown explorer link, or "N/A" when
// the upstream returned none.
func txDisplay(signature string) string {
	if signature == "" {
		return "N/A"
	}
	return fmt.Sprintf("[%s](%s)", truncateAddress(signature, 6), txLink(signature))
}

// formatDuration turns an upstream duration string like "20m57.369032128s"
// into "20m 57s". Unparsable input is returned unchanged.
func formatDuration(raw string) string {
	if raw == "" || raw == "Unknown" {
		return "Unknown"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return raw
	}

	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// formatPrice renders a price without scientific notation, up to 10
// decimal places with trailing zeros stripped. Meme-token prices routinely
// look like 0.0000001707, which %f and %g both mangle.
func formatPrice(price float64) string {
	s := decimal.NewFromFloat(price).StringFixed(10)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// escapeMarkdown escapes Telegram Markdown control characters in
// user-influenced text.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "`", "\\`",
	)
	return replacer.Replace(text)
}
