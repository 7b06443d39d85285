package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeDefaults(t *testing.T) {
	s := &Settings{AccountBalance: 750}
	s.MergeDefaults()

	assert.Equal(t, 750.0, s.AccountBalance)
	assert.Equal(t, DefaultAssetFees["BTC"], s.AssetFees["BTC"])
	assert.NotEmpty(t, s.TradingSystems)
	assert.Len(t, s.TradingSessions, 4)
	assert.Equal(t, DefaultRiskTolerance, s.RiskDeviationTolerance)
	assert.Equal(t, DefaultIdealRisk, s.DefaultIdealRisk)
	assert.NotNil(t, s.SystemIdealRisk)
}

func TestMergeDefaultsKeepsCustomValues(t *testing.T) {
	s := DefaultSettings()
	s.AssetFees["SOL"] = 0.5
	s.TradingSessions = s.TradingSessions[:2]
	s.MergeDefaults()

	assert.Equal(t, 0.5, s.AssetFees["SOL"])
	assert.Len(t, s.TradingSessions, 2)
}

func TestIdealRiskFor(t *testing.T) {
	s := DefaultSettings()
	s.DefaultIdealRisk = 100
	s.SystemIdealRisk = map[string]float64{"Scalping": 50, "Broken": 0}

	assert.Equal(t, 50.0, s.IdealRiskFor("Scalping"))
	assert.Equal(t, 100.0, s.IdealRiskFor("Swing Trading"))
	// Zero overrides are ignored.
	assert.Equal(t, 100.0, s.IdealRiskFor("Broken"))
}

func TestAdjustmentSigned(t *testing.T) {
	add := &BalanceAdjustment{Amount: 50, Type: AdjustmentAdd}
	sub := &BalanceAdjustment{Amount: 50, Type: AdjustmentSubtract}

	assert.Equal(t, 50.0, add.Signed())
	assert.Equal(t, -50.0, sub.Signed())
}

func TestHasTag(t *testing.T) {
	trade := &Trade{Tags: []string{"news", "fomc"}}
	assert.True(t, trade.HasTag("news"))
	assert.False(t, trade.HasTag("News"))
	assert.False(t, (&Trade{}).HasTag("news"))
}
