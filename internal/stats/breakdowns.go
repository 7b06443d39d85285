package stats

import (
	"sort"

	"tradejournal/internal/models"
)

// Breakdown is one group's slice of the per-group statistics: trade count,
// win rate (net P&L basis), total net P&L, and average expected R.
type Breakdown struct {
	Key          string  `json:"key"`
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"winRate"`
	TotalPnL     float64 `json:"totalPnL"`
	AvgExpectedR float64 `json:"avgExpectedR"`
}

// groupBy reduces trades into breakdowns keyed by the extractor. Groups are
// returned sorted by key for stable output.
func groupBy(trades []models.Trade, key func(*models.Trade) string) []Breakdown {
	groups := make(map[string]*Breakdown)
	for i := range trades {
		t := &trades[i]
		k := key(t)
		if k == "" {
			k = "N/A"
		}
		g, ok := groups[k]
		if !ok {
			g = &Breakdown{Key: k}
			groups[k] = g
		}
		g.Trades++
		g.TotalPnL += t.PnL
		g.AvgExpectedR += t.ExpectedR
		if t.PnL > 0 {
			g.Wins++
		}
	}

	out := make([]Breakdown, 0, len(groups))
	for _, g := range groups {
		if g.Trades > 0 {
			g.WinRate = float64(g.Wins) / float64(g.Trades) * 100
			g.AvgExpectedR /= float64(g.Trades)
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// BySystem groups trades by trading system.
func BySystem(trades []models.Trade) []Breakdown {
	return groupBy(trades, func(t *models.Trade) string { return t.System })
}

// ByTimeframe groups trades by chart timeframe.
func ByTimeframe(trades []models.Trade) []Breakdown {
	return groupBy(trades, func(t *models.Trade) string { return t.Timeframe })
}

// BySession groups trades by trading session name.
func BySession(trades []models.Trade) []Breakdown {
	return groupBy(trades, func(t *models.Trade) string { return t.Session })
}

// ByDayOfWeek groups trades by day of week.
func ByDayOfWeek(trades []models.Trade) []Breakdown {
	return groupBy(trades, func(t *models.Trade) string { return t.DayOfWeek })
}

// ByMonth groups trades by calendar month (YYYY-MM from the trade date).
func ByMonth(trades []models.Trade) []Breakdown {
	return groupBy(trades, func(t *models.Trade) string {
		if len(t.Date) >= 7 {
			return t.Date[:7]
		}
		return t.Date
	})
}

// Best returns the breakdown with the highest average expected R, or a zero
// value when the slice is empty.
func Best(breakdowns []Breakdown) Breakdown {
	var best Breakdown
	for i, b := range breakdowns {
		if i == 0 || b.AvgExpectedR > best.AvgExpectedR {
			best = b
		}
	}
	return best
}

// Worst returns the breakdown with the lowest average expected R, or a zero
// value when the slice is empty.
func Worst(breakdowns []Breakdown) Breakdown {
	var worst Breakdown
	for i, b := range breakdowns {
		if i == 0 || b.AvgExpectedR < worst.AvgExpectedR {
			worst = b
		}
	}
	return worst
}
