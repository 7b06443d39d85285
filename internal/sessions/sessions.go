// Package sessions classifies times of day into named trading sessions.
package sessions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradejournal/internal/models"
)

// ParseClock converts an HH:MM string to minutes since midnight (0-1439).
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// clockMinutes is the lenient variant used during classification: malformed
// boundaries resolve to 0 rather than failing the lookup.
func clockMinutes(clock string) int {
	m, err := ParseClock(clock)
	if err != nil {
		return 0
	}
	return m
}

// Classify maps a time of day to a trading session. Sessions are checked in
// list order and the first match wins, which is also the tie-break for
// overlapping ranges. A session whose start is later than its end wraps past
// midnight. When the list is empty or nothing matches, the first default
// session is returned.
func Classify(timeOfDay string, sessionList []models.TradingSession) models.TradingSession {
	if len(sessionList) == 0 {
		sessionList = models.DefaultTradingSessions()
	}

	t := clockMinutes(timeOfDay)
	for _, s := range sessionList {
		start := clockMinutes(s.StartTime)
		end := clockMinutes(s.EndTime)
		if start > end {
			// Wraps midnight, e.g. 20:00-06:00.
			if t >= start || t <= end {
				return s
			}
		} else if t >= start && t <= end {
			return s
		}
	}

	return sessionList[0]
}

// DayOfWeek returns the English day name for a YYYY-MM-DD date. The date is
// interpreted at UTC midnight so the result does not shift across timezones.
func DayOfWeek(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return d.UTC().Weekday().String()
}

// FormatRange renders a session's time range for display.
func FormatRange(s models.TradingSession) string {
	return fmt.Sprintf("%s - %s UTC", s.StartTime, s.EndTime)
}
