package store

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/errors"
	"tradejournal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTrade(id string) *models.Trade {
	return &models.Trade{
		ID:              id,
		Date:            "2026-08-17",
		Time:            "14:30",
		EndDate:         "2026-08-17",
		EndTime:         "16:00",
		Asset:           "BTC",
		TradeType:       models.Long,
		EntryPrice:      43500,
		ExitPrice:       44100,
		StopLoss:        43200,
		TakeProfit:      44200,
		PositionSize:    0.5,
		IdealRiskAmount: 100,
		System:          "NYC Breakout",
		Timeframe:       "M15",
		Grade:           "A+",
		Tags:            []string{"momentum", "news"},
		Notes:           "clean break of the range",
		Ticket:          "1001",
		Fee:             8,
		RiskAmount:      150,
		ActualRiskAmount: 158,
		PnL:             292,
		RMultiple:       2,
		ExpectedR:       2.92,
		RiskPercent:     15.8,
		RiskDeviation:   58,
		IsOverRisked:    true,
		Outcome:         models.Win,
		Session:         "New York",
		DayOfWeek:       "Monday",
		Duration:        "1h 30m",
	}
}

func TestTradeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := sampleTrade("t1")
	require.NoError(t, store.SaveTrade(ctx, original))

	got, err := store.GetTrade(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestGetTradeNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTrade(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrTradeNotFound)
}

func TestUpdateTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := sampleTrade("t1")
	require.NoError(t, store.SaveTrade(ctx, trade))

	trade.System = "London Open"
	trade.NeedsRecalc = true
	require.NoError(t, store.UpdateTrade(ctx, trade))

	got, err := store.GetTrade(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "London Open", got.System)
	assert.True(t, got.NeedsRecalc)
}

func TestDeleteTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTrade(ctx, sampleTrade("t1")))
	require.NoError(t, store.DeleteTrade(ctx, "t1"))
	assert.ErrorIs(t, store.DeleteTrade(ctx, "t1"), errors.ErrTradeNotFound)
}

func TestGetTradesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := sampleTrade("t1")
	b := sampleTrade("t2")
	b.Date = "2026-08-18"
	b.Asset = "XAU"
	b.System = "Scalping"
	b.Outcome = models.Loss
	b.Ticket = "1002"
	c := sampleTrade("t3")
	c.Date = "2026-08-19"
	c.Ticket = ""

	for _, trade := range []*models.Trade{a, b, c} {
		require.NoError(t, store.SaveTrade(ctx, trade))
	}

	all, err := store.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "t3", all[0].ID)
	assert.Equal(t, "t1", all[2].ID)

	byAsset, err := store.GetTrades(ctx, TradeFilter{Asset: "XAU"})
	require.NoError(t, err)
	require.Len(t, byAsset, 1)
	assert.Equal(t, "t2", byAsset[0].ID)

	byOutcome, err := store.GetTrades(ctx, TradeFilter{Outcome: "Win"})
	require.NoError(t, err)
	assert.Len(t, byOutcome, 2)

	byRange, err := store.GetTrades(ctx, TradeFilter{DateFrom: "2026-08-18", DateTo: "2026-08-18"})
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, "t2", byRange[0].ID)

	byTicket, err := store.GetTrades(ctx, TradeFilter{Ticket: "1002"})
	require.NoError(t, err)
	assert.Len(t, byTicket, 1)

	limited, err := store.GetTrades(ctx, TradeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSettingsRoundTripAndDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// No row yet: full defaults.
	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAccountBalance, settings.AccountBalance)
	assert.NotEmpty(t, settings.TradingSessions)

	settings.AccountBalance = 2500
	settings.AssetFees["SOL"] = 0.5
	require.NoError(t, store.SaveSettings(ctx, settings))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.AccountBalance)
	assert.Equal(t, 0.5, got.AssetFees["SOL"])
	// Defaults merged back in.
	assert.NotEmpty(t, got.TradingSystems)
}

func TestSettingsPartialDocumentMergesDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Simulate an older persisted shape with most fields absent.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO settings (id, data) VALUES (1, ?)`, `{"accountBalance": 750}`)
	require.NoError(t, err)

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 750.0, got.AccountBalance)
	assert.NotEmpty(t, got.AssetFees)
	assert.NotEmpty(t, got.TradingSessions)
	assert.Equal(t, models.DefaultRiskTolerance, got.RiskDeviationTolerance)
}

func TestAdjustmentsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	adj := &models.BalanceAdjustment{
		ID:     "a1",
		Amount: 500,
		Type:   models.AdjustmentAdd,
		Date:   "2026-08-17",
		Time:   "09:00",
		Reason: "deposit",
	}
	require.NoError(t, store.SaveAdjustment(ctx, adj))

	adjustments, err := store.GetAdjustments(ctx)
	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	assert.Equal(t, *adj, adjustments[0])

	require.NoError(t, store.DeleteAdjustment(ctx, "a1"))
	assert.ErrorIs(t, store.DeleteAdjustment(ctx, "a1"), errors.ErrAdjustmentNotFound)
}

func TestExportDocumentRoundTrip(t *testing.T) {
	trades := []models.Trade{*sampleTrade("t1")}
	settings := models.DefaultSettings()
	adjustments := []models.BalanceAdjustment{
		{ID: "a1", Amount: 100, Type: models.AdjustmentAdd, Date: "2026-08-17", Time: "09:00"},
	}
	stats := &models.TradeStats{TotalTrades: 1, ProfitFactor: 2.5}

	doc := NewExportDocument(trades, settings, adjustments, stats)
	assert.Equal(t, ExportVersion, doc.Version)

	var buf strings.Builder
	require.NoError(t, doc.WriteJSON(&buf))

	parsed, err := ReadExportDocument(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, doc.Trades, parsed.Trades)
	assert.Equal(t, doc.BalanceAdjustments, parsed.BalanceAdjustments)
	assert.Nil(t, parsed.Stats) // snapshots are recomputed, never imported
}

func TestExportDocumentSanitizesInfiniteProfitFactor(t *testing.T) {
	stats := &models.TradeStats{TotalTrades: 2, ProfitFactor: math.Inf(1)}
	doc := NewExportDocument(nil, models.DefaultSettings(), nil, stats)

	var buf strings.Builder
	require.NoError(t, doc.WriteJSON(&buf))
	assert.Equal(t, 0.0, doc.Stats.ProfitFactor)
}
