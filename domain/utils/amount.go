package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"casino/economy-bot/domain/entities"
)

// FormatShortNotation formats a number using short notation (e.g., 50k instead of 50000)
func FormatShortNotation(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, float64(absValue)/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%dk", sign, absValue/1_000)
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fk", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}

var shortSuffixes = map[byte]float64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
}

// ParseAmount turns user input into a positive amount.
// Besides plain integers it accepts "all", "half", short notation ("10k", "1.5m")
// and scientific notation ("1e6"). available is what "all" and "half" refer to.
func ParseAmount(input string, available int64) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")

	var amount int64
	switch s {
	case "":
		return 0, fmt.Errorf("%w: empty amount", entities.ErrInvalidAmount)
	case "all":
		amount = available
	case "half":
		amount = available / 2
	default:
		parsed, err := parseNumber(s)
		if err != nil {
			return 0, err
		}
		amount = parsed
	}

	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidAmount)
	}
	return amount, nil
}

func parseNumber(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	multiplier := 1.0
	if m, ok := shortSuffixes[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", entities.ErrInvalidAmount, s)
	}

	value := f * multiplier
	if value >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: amount too large", entities.ErrInvalidAmount)
	}
	return int64(value), nil
}
