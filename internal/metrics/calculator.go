// Package metrics is the single source of truth for per-trade derived
// fields. Every mutation path (form entry, bulk update, broker import) goes
// through Compute; no other code derives these formulas.
package metrics

import (
	"math"
	"strings"

	"tradejournal/internal/models"
	"tradejournal/internal/sessions"
)

// Input is the raw, user-supplied side of a trade.
type Input struct {
	Asset           string
	TradeType       models.TradeType
	EntryPrice      float64
	ExitPrice       float64
	StopLoss        float64
	PositionSize    float64
	IdealRiskAmount float64
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
}

// Config is the slice of Settings the calculator needs. It is read-only.
type Config struct {
	AssetFees              map[string]float64
	AccountBalance         float64
	RiskDeviationTolerance float64 // percent; <= tolerance is "good risk"
	TradingSessions        []models.TradingSession
}

// ConfigFromSettings extracts a calculator config from journal settings.
func ConfigFromSettings(s *models.Settings) Config {
	return Config{
		AssetFees:              s.AssetFees,
		AccountBalance:         s.AccountBalance,
		RiskDeviationTolerance: s.RiskDeviationTolerance,
		TradingSessions:        s.TradingSessions,
	}
}

// Derived holds every computed trade field. All monetary and ratio values
// are rounded to two decimals; flags and labels are exact.
type Derived struct {
	Fee              float64
	RiskAmount       float64
	ActualRiskAmount float64
	PnL              float64 // net, after fee
	RMultiple        float64
	ExpectedR        float64
	RiskPercent      float64
	RiskDeviation    float64
	IsOverRisked     bool
	IsUnderRisked    bool
	Outcome          models.Outcome
	Session          string
	DayOfWeek        string
}

// Outcome deadband: results within ±0.1R count as breakeven, absorbing
// float noise and near-zero trades.
const outcomeDeadbandR = 0.1

// ClassifyOutcome buckets an R-multiple into Win, Loss, or Breakeven using
// the deadband. Every path that derives an outcome goes through here.
func ClassifyOutcome(rMultiple float64) models.Outcome {
	switch {
	case rMultiple > outcomeDeadbandR:
		return models.Win
	case rMultiple < -outcomeDeadbandR:
		return models.Loss
	default:
		return models.Breakeven
	}
}

// RiskDeviationPct is how far actual risk strayed from the intended amount,
// in percent. Zero intended risk yields zero, not a division error.
func RiskDeviationPct(actualRisk, idealRisk float64) float64 {
	if idealRisk <= 0 {
		return 0
	}
	return (actualRisk - idealRisk) / idealRisk * 100
}

// RiskFlags classifies a deviation against the tolerance. Within tolerance
// both flags are false ("good risk"); tolerance itself does not trip them.
func RiskFlags(deviation, tolerance float64) (over, under bool) {
	over = deviation > 0 && math.Abs(deviation) > tolerance
	under = deviation < 0 && math.Abs(deviation) > tolerance
	return over, under
}

// RiskPercent is actual risk as a share of the account balance, in percent.
func RiskPercent(actualRisk, balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	return actualRisk / balance * 100
}

// Compute derives the full metric set for one trade. It is pure and total
// for numeric input: zero position size or entry == stop produce zeros, not
// division errors. Rounding happens only at the end; intermediate math uses
// full float precision.
func Compute(in Input, cfg Config) Derived {
	feeRate := cfg.AssetFees[NormalizeAssetKey(in.Asset)]
	fee := in.PositionSize * feeRate

	riskPerUnit := math.Abs(in.EntryPrice - in.StopLoss)
	riskAmount := riskPerUnit * in.PositionSize
	actualRiskAmount := riskAmount + fee

	priceDelta := in.ExitPrice - in.EntryPrice
	if in.TradeType == models.Short {
		priceDelta = in.EntryPrice - in.ExitPrice
	}
	grossPnL := priceDelta * in.PositionSize
	pnl := grossPnL - fee

	var rMultiple float64
	if riskAmount > 0 {
		rMultiple = grossPnL / riskAmount
	}

	var expectedR float64
	if in.IdealRiskAmount > 0 {
		expectedR = pnl / in.IdealRiskAmount
	}
	riskDeviation := RiskDeviationPct(actualRiskAmount, in.IdealRiskAmount)
	overRisked, underRisked := RiskFlags(riskDeviation, cfg.RiskDeviationTolerance)
	riskPercent := RiskPercent(actualRiskAmount, cfg.AccountBalance)

	return Derived{
		Fee:              Round2(fee),
		RiskAmount:       Round2(riskAmount),
		ActualRiskAmount: Round2(actualRiskAmount),
		PnL:              Round2(pnl),
		RMultiple:        Round2(rMultiple),
		ExpectedR:        Round2(expectedR),
		RiskPercent:      Round2(riskPercent),
		RiskDeviation:    Round2(riskDeviation),
		IsOverRisked:     overRisked,
		IsUnderRisked:    underRisked,
		Outcome:          ClassifyOutcome(rMultiple),
		Session:          sessions.Classify(in.Time, cfg.TradingSessions).Name,
		DayOfWeek:        sessions.DayOfWeek(in.Date),
	}
}

// Recalculate applies Compute to a trade in place, from its current input
// fields and the given settings, and clears the stale marker.
func Recalculate(t *models.Trade, s *models.Settings) {
	d := Compute(Input{
		Asset:           t.Asset,
		TradeType:       t.TradeType,
		EntryPrice:      t.EntryPrice,
		ExitPrice:       t.ExitPrice,
		StopLoss:        t.StopLoss,
		PositionSize:    t.PositionSize,
		IdealRiskAmount: t.IdealRiskAmount,
		Date:            t.Date,
		Time:            t.Time,
	}, ConfigFromSettings(s))

	t.Fee = d.Fee
	t.RiskAmount = d.RiskAmount
	t.ActualRiskAmount = d.ActualRiskAmount
	t.PnL = d.PnL
	t.RMultiple = d.RMultiple
	t.ExpectedR = d.ExpectedR
	t.RiskPercent = d.RiskPercent
	t.RiskDeviation = d.RiskDeviation
	t.IsOverRisked = d.IsOverRisked
	t.IsUnderRisked = d.IsUnderRisked
	t.Outcome = d.Outcome
	t.Session = d.Session
	t.DayOfWeek = d.DayOfWeek
	t.NeedsRecalc = false
}

// NormalizeAssetKey turns an asset label into a fee-lookup key: uppercase,
// anything after a "/" dropped, trailing USD/USDT stripped.
func NormalizeAssetKey(asset string) string {
	key := strings.ToUpper(strings.TrimSpace(asset))
	if i := strings.Index(key, "/"); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimSuffix(key, "USDT")
	key = strings.TrimSuffix(key, "USD")
	return key
}

// Round2 rounds to two decimal places, the storage precision for all
// derived numeric fields.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
