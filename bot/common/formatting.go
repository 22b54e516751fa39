package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatBalanceCompact formats a balance amount in compact form (e.g. 100k, 1.5M)
func FormatBalanceCompact(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalanceCompact(-balance)
	}
	if balance < 1000 {
		return fmt.Sprintf("%d", balance)
	} else if balance < 1000000 {
		thousands := float64(balance) / 1000.0
		if thousands == float64(int(thousands)) {
			return fmt.Sprintf("%.0fk", thousands)
		}
		return fmt.Sprintf("%.1fk", thousands)
	} else if balance < 1000000000 {
		millions := float64(balance) / 1000000.0
		if millions == float64(int(millions)) {
			return fmt.Sprintf("%.0fM", millions)
		}
		return fmt.Sprintf("%.1fM", millions)
	} else {
		billions := float64(balance) / 1000000000.0
		if billions == float64(int(billions)) {
			return fmt.Sprintf("%.0fB", billions)
		}
		return fmt.Sprintf("%.1fB", billions)
	}
}

// FormatCoins formats an amount with the currency emoji, e.g. "🪙 1,250"
func FormatCoins(amount int64) string {
	return CurrencyEmoji + " " + FormatBalance(amount)
}

// FormatPaymentResult formats the result of a payment
func FormatPaymentResult(amount, fee int64, recipientID string) string {
	if fee == 0 {
		return fmt.Sprintf("✅ Sent **%s** to <@%s>", FormatCoins(amount), recipientID)
	}
	return fmt.Sprintf("✅ Sent **%s** to <@%s> (fee: %s, they received %s)",
		FormatCoins(amount), recipientID, FormatCoins(fee), FormatCoins(amount-fee))
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration formats a duration in a human-readable format
// Examples: "2d 14h 30m", "3h 45m", "45m", "12s"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		seconds := int(d.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return fmt.Sprintf("%ds", seconds)
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}
