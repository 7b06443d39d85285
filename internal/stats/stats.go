// Package stats reduces the trade collection into portfolio statistics.
// Everything here is a pure full-scan projection; nothing is cached.
package stats

import (
	"math"

	"tradejournal/internal/models"
)

// Aggregate computes portfolio statistics over the full trade collection.
// Wins and losses are counted by net P&L sign; the expected-R based win rate
// is reported separately as EVWinRate and never feeds the headline numbers.
// An empty collection yields all zeros, never NaN.
func Aggregate(trades []models.Trade, adjustments []models.BalanceAdjustment, settings *models.Settings) models.TradeStats {
	var s models.TradeStats
	s.AdjustedBalance = settings.AccountBalance + adjustmentTotal(adjustments)
	if len(trades) == 0 {
		return s
	}

	total := float64(len(trades))
	s.TotalTrades = len(trades)

	var evWins int
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			s.WinningTrades++
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			s.LosingTrades++
			grossLoss += -t.PnL
		}
		if t.ExpectedR > 0 {
			evWins++
		}

		s.TotalPnL += t.PnL
		s.TotalFees += t.Fee
		s.TotalR += t.RMultiple
		s.TotalExpectedR += t.ExpectedR
		s.TotalRisk += t.RiskAmount
		s.TotalIdealRisk += t.IdealRiskAmount
		s.AvgRiskDeviation += t.RiskDeviation

		if t.PnL > s.LargestWin {
			s.LargestWin = t.PnL
		}
		if t.PnL < s.LargestLoss {
			s.LargestLoss = t.PnL
		}
		if t.IsOverRisked {
			s.OverRiskedTrades++
		}
		if t.IsUnderRisked {
			s.UnderRiskedTrades++
		}
	}

	s.WinRate = float64(s.WinningTrades) / total * 100
	s.EVWinRate = float64(evWins) / total * 100
	s.GrossPnL = s.TotalPnL + s.TotalFees
	s.AverageR = s.TotalR / total
	s.AverageExpectedR = s.TotalExpectedR / total
	s.ExpectedValue = s.AverageExpectedR
	s.Expectancy = s.TotalPnL / total
	s.AvgRiskDeviation /= total
	s.GoodRiskTrades = s.TotalTrades - s.OverRiskedTrades - s.UnderRiskedTrades

	switch {
	case grossLoss > 0:
		s.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		s.ProfitFactor = math.Inf(1)
	}

	s.AdjustedBalance += s.TotalPnL
	return s
}

func adjustmentTotal(adjustments []models.BalanceAdjustment) float64 {
	var sum float64
	for i := range adjustments {
		sum += adjustments[i].Signed()
	}
	return sum
}
