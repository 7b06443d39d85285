package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradejournal/internal/models"
)

func testConfig() Config {
	return Config{
		AssetFees:              map[string]float64{"BTC": 2, "XAU": 11},
		AccountBalance:         1000,
		RiskDeviationTolerance: 10,
		TradingSessions:        models.DefaultTradingSessions(),
	}
}

func TestComputeLongWin(t *testing.T) {
	d := Compute(Input{
		Asset:           "SOL",
		TradeType:       models.Long,
		EntryPrice:      100,
		ExitPrice:       110,
		StopLoss:        95,
		PositionSize:    2,
		IdealRiskAmount: 100,
		Date:            "2026-08-17",
		Time:            "14:30",
	}, testConfig())

	assert.Equal(t, 0.0, d.Fee) // no fee schedule for SOL
	assert.Equal(t, 10.0, d.RiskAmount)
	assert.Equal(t, 10.0, d.ActualRiskAmount)
	assert.Equal(t, 20.0, d.PnL)
	assert.Equal(t, 2.0, d.RMultiple)
	assert.Equal(t, 0.2, d.ExpectedR)
	assert.Equal(t, models.Win, d.Outcome)
	assert.Equal(t, "New York", d.Session)
	assert.Equal(t, "Monday", d.DayOfWeek)
}

func TestComputeShortLossWithFee(t *testing.T) {
	d := Compute(Input{
		Asset:           "BTC",
		TradeType:       models.Short,
		EntryPrice:      100,
		ExitPrice:       105,
		StopLoss:        95,
		PositionSize:    1,
		IdealRiskAmount: 10,
		Date:            "2026-08-18",
		Time:            "08:00",
	}, testConfig())

	assert.Equal(t, 2.0, d.Fee)
	assert.Equal(t, 5.0, d.RiskAmount)
	assert.Equal(t, 7.0, d.ActualRiskAmount)
	assert.Equal(t, -7.0, d.PnL) // gross -5 minus fee 2
	assert.Equal(t, -1.0, d.RMultiple)
	assert.Equal(t, -0.7, d.ExpectedR)
	assert.Equal(t, -30.0, d.RiskDeviation)
	assert.True(t, d.IsUnderRisked)
	assert.False(t, d.IsOverRisked)
	assert.Equal(t, models.Loss, d.Outcome)
	assert.Equal(t, "London", d.Session)
}

func TestComputeOverRisked(t *testing.T) {
	d := Compute(Input{
		Asset:           "BTC",
		TradeType:       models.Long,
		EntryPrice:      100,
		ExitPrice:       101,
		StopLoss:        80,
		PositionSize:    1,
		IdealRiskAmount: 10,
		Date:            "2026-08-18",
		Time:            "01:00",
	}, testConfig())

	// actual risk 22 vs ideal 10 is a 120% overshoot
	assert.Equal(t, 120.0, d.RiskDeviation)
	assert.True(t, d.IsOverRisked)
	assert.False(t, d.IsUnderRisked)
}

func TestComputeZeroGuards(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"zero position size", Input{Asset: "BTC", TradeType: models.Long, EntryPrice: 100, ExitPrice: 110, StopLoss: 95, PositionSize: 0, IdealRiskAmount: 100, Date: "2026-08-18", Time: "10:00"}},
		{"entry equals stop", Input{Asset: "BTC", TradeType: models.Long, EntryPrice: 100, ExitPrice: 110, StopLoss: 100, PositionSize: 2, IdealRiskAmount: 100, Date: "2026-08-18", Time: "10:00"}},
		{"zero ideal risk", Input{Asset: "BTC", TradeType: models.Long, EntryPrice: 100, ExitPrice: 110, StopLoss: 95, PositionSize: 2, IdealRiskAmount: 0, Date: "2026-08-18", Time: "10:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compute(tt.in, testConfig())
			assert.False(t, math.IsNaN(d.RMultiple), "R-multiple is NaN")
			assert.False(t, math.IsNaN(d.ExpectedR), "expected R is NaN")
			assert.False(t, math.IsNaN(d.RiskDeviation), "risk deviation is NaN")
		})
	}
}

func TestComputeBreakevenDeadband(t *testing.T) {
	cfg := testConfig()
	in := Input{
		Asset:           "SOL",
		TradeType:       models.Long,
		EntryPrice:      100,
		StopLoss:        90,
		PositionSize:    1,
		IdealRiskAmount: 100,
		Date:            "2026-08-18",
		Time:            "10:00",
	}

	// Exit 0.5 above entry is +0.05R, inside the deadband.
	in.ExitPrice = 100.5
	assert.Equal(t, models.Breakeven, Compute(in, cfg).Outcome)

	// Exit 1.5 above entry is +0.15R, outside it.
	in.ExitPrice = 101.5
	assert.Equal(t, models.Win, Compute(in, cfg).Outcome)

	in.ExitPrice = 98.5
	assert.Equal(t, models.Loss, Compute(in, cfg).Outcome)
}

func TestRecalculateClearsStaleMarker(t *testing.T) {
	settings := models.DefaultSettings()
	trade := &models.Trade{
		Asset:           "BTC",
		TradeType:       models.Long,
		EntryPrice:      43500,
		ExitPrice:       44100,
		StopLoss:        43200,
		PositionSize:    0.5,
		IdealRiskAmount: 100,
		Date:            "2026-08-18",
		Time:            "14:30",
		NeedsRecalc:     true,
	}

	Recalculate(trade, settings)

	assert.False(t, trade.NeedsRecalc)
	assert.Equal(t, 8.0, trade.Fee) // 0.5 * 16
	assert.Equal(t, 150.0, trade.RiskAmount)
	assert.Equal(t, 292.0, trade.PnL) // 300 gross - 8 fee
	assert.Equal(t, 2.0, trade.RMultiple)
	assert.Equal(t, models.Win, trade.Outcome)
	assert.Equal(t, "New York", trade.Session)
	assert.Equal(t, "Tuesday", trade.DayOfWeek)
}

func TestClassifyOutcomeDeadband(t *testing.T) {
	assert.Equal(t, models.Win, ClassifyOutcome(0.11))
	assert.Equal(t, models.Breakeven, ClassifyOutcome(0.1))
	assert.Equal(t, models.Breakeven, ClassifyOutcome(0))
	assert.Equal(t, models.Breakeven, ClassifyOutcome(-0.1))
	assert.Equal(t, models.Loss, ClassifyOutcome(-0.11))
}

func TestRiskFlagsToleranceIsInclusive(t *testing.T) {
	over, under := RiskFlags(10, 10)
	assert.False(t, over)
	assert.False(t, under)

	over, under = RiskFlags(10.01, 10)
	assert.True(t, over)
	assert.False(t, under)

	over, under = RiskFlags(-10.01, 10)
	assert.False(t, over)
	assert.True(t, under)
}

func TestRiskRatioGuards(t *testing.T) {
	assert.Equal(t, 0.0, RiskDeviationPct(50, 0))
	assert.Equal(t, -30.0, RiskDeviationPct(7, 10))
	assert.Equal(t, 0.0, RiskPercent(50, 0))
	assert.Equal(t, 0.7, RiskPercent(7, 1000))
}

func TestNormalizeAssetKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{"BTCUSD", "BTC"},
		{"BTCUSDT", "BTC"},
		{"BTC/USD", "BTC"},
		{"eth/usdt", "ETH"},
		{" XAUUSD ", "XAU"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAssetKey(tt.in), "input %q", tt.in)
	}
}

func TestGradeAdjustedRisk(t *testing.T) {
	settings := models.DefaultSettings()
	settings.DefaultIdealRisk = 100
	settings.SystemIdealRisk = map[string]float64{"NYC Breakout": 200}

	tests := []struct {
		system string
		grade  string
		want   float64
	}{
		{"NYC Breakout", "A++++", 500},
		{"NYC Breakout", "A+", 200},
		{"Scalping", "A", 80},
		{"Scalping", "B", 50},
		{"Scalping", "F", 1},
		{"Scalping", "unknown", 100},
		{"Scalping", "", 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeAdjustedRisk(settings, tt.system, tt.grade), "%s/%s", tt.system, tt.grade)
	}
}
