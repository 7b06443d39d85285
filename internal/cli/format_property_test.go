package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: currency formatting produces valid dollar notation.
//
// For any amount, FormatCurrency should:
// 1. Start with $ (or -$ for negative)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in threes
// 4. Preserve the numeric value when parsed back
func TestProperty_CurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	groupPattern := regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

	properties.Property("FormatCurrency produces valid dollar format", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}

			formatted := FormatCurrency(amount)

			if amount >= 0 {
				if !strings.HasPrefix(formatted, "$") {
					t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
					return false
				}
			} else {
				if !strings.HasPrefix(formatted, "-$") {
					t.Logf("Expected -$ prefix for %f, got %s", amount, formatted)
					return false
				}
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}

			numPart := strings.TrimPrefix(strings.TrimPrefix(parts[0], "-"), "$")
			if !groupPattern.MatchString(numPart) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatCurrency preserves value", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}

			formatted := FormatCurrency(amount)
			parsed := parseCurrency(formatted)

			roundedAmount := math.Round(amount*100) / 100
			return math.Abs(parsed-roundedAmount) <= 0.01
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

// parseCurrency parses a formatted dollar string back to a float.
func parseCurrency(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func TestFormatCurrencyExamples(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1, "$1.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-42.1, "-$42.10"},
		{-1000000, "-$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatPercent(12.345); got != "+12.35%" {
		t.Errorf("FormatPercent positive = %q", got)
	}
	if got := FormatPercent(-3.2); got != "-3.20%" {
		t.Errorf("FormatPercent negative = %q", got)
	}
	if got := FormatRMultiple(2.5); got != "+2.50R" {
		t.Errorf("FormatRMultiple = %q", got)
	}
	if got := FormatRMultiple(-1); got != "-1.00R" {
		t.Errorf("FormatRMultiple negative = %q", got)
	}
	if got := FormatPrice(2.34567); got != "2.3457" {
		t.Errorf("FormatPrice small = %q", got)
	}
	if got := FormatPrice(43500.5); got != "43500.50" {
		t.Errorf("FormatPrice large = %q", got)
	}
	if got := TruncateString("momentum breakout", 10); got != "momentu..." {
		t.Errorf("TruncateString = %q", got)
	}
}
