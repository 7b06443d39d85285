package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })
	return NewService(dataStore, zerolog.Nop())
}

func inputTrade() *models.Trade {
	return &models.Trade{
		Date:            "2026-08-17",
		Time:            "14:30",
		Asset:           "BTC",
		TradeType:       models.Long,
		EntryPrice:      43500,
		ExitPrice:       44100,
		StopLoss:        43200,
		PositionSize:    0.5,
		IdealRiskAmount: 100,
		System:          "NYC Breakout",
	}
}

func TestAddTradeComputesMetrics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	trade := inputTrade()
	require.NoError(t, svc.AddTrade(ctx, trade))
	assert.NotEmpty(t, trade.ID)

	got, err := svc.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, 292.0, got.PnL)
	assert.Equal(t, 2.0, got.RMultiple)
	assert.Equal(t, models.Win, got.Outcome)
	assert.Equal(t, "New York", got.Session)
	assert.Equal(t, "Monday", got.DayOfWeek)
}

func TestAddTradeValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	trade := inputTrade()
	trade.Asset = ""
	err := svc.AddTrade(ctx, trade)
	require.Error(t, err)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)

	trade = inputTrade()
	trade.TradeType = "Sideways"
	assert.Error(t, svc.AddTrade(ctx, trade))

	trade = inputTrade()
	trade.PositionSize = -1
	assert.Error(t, svc.AddTrade(ctx, trade))
}

func TestUpdateTradeRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	trade := inputTrade()
	require.NoError(t, svc.AddTrade(ctx, trade))

	trade.ExitPrice = 43400 // now a losing trade
	require.NoError(t, svc.UpdateTrade(ctx, trade))

	got, err := svc.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Loss, got.Outcome)
	assert.Equal(t, -58.0, got.PnL) // -50 gross - 8 fee
}

func TestUpdateMissingTrade(t *testing.T) {
	svc := newTestService(t)
	trade := inputTrade()
	trade.ID = "missing"
	assert.ErrorIs(t, svc.UpdateTrade(context.Background(), trade), apperrors.ErrTradeNotFound)
}

func TestApplyBulkUpdateMarksStale(t *testing.T) {
	settings := models.DefaultSettings()
	trade := inputTrade()
	trade.Tags = []string{"pending"}

	risk := 150.0
	system := "London Open"
	update := BulkUpdate{
		System:          &system,
		IdealRiskAmount: &risk,
		AddTags:         []string{"reviewed", "pending"}, // duplicate add is a no-op
		RemoveTags:      []string{"pending"},
	}
	ApplyBulkUpdate(trade, update, settings)

	assert.Equal(t, "London Open", trade.System)
	assert.Equal(t, 150.0, trade.IdealRiskAmount)
	assert.Equal(t, []string{"reviewed"}, trade.Tags)
	// Ideal risk changed without a recompute: metrics are stale.
	assert.True(t, trade.NeedsRecalc)
}

func TestApplyBulkUpdateWithRecalc(t *testing.T) {
	settings := models.DefaultSettings()
	trade := inputTrade()

	risk := 200.0
	update := BulkUpdate{IdealRiskAmount: &risk, RecalculateMetrics: true}
	ApplyBulkUpdate(trade, update, settings)

	assert.False(t, trade.NeedsRecalc)
	assert.Equal(t, 1.46, trade.ExpectedR) // 292 / 200
}

func TestApplyBulkUpdateGradeRisk(t *testing.T) {
	settings := models.DefaultSettings()
	settings.SystemIdealRisk = map[string]float64{"NYC Breakout": 200}
	trade := inputTrade()

	grade := "B"
	ApplyBulkUpdate(trade, BulkUpdate{Grade: &grade, ApplyGradeRisk: true}, settings)

	assert.Equal(t, 100.0, trade.IdealRiskAmount) // 200 base x0.5 for B
	assert.False(t, trade.NeedsRecalc)
	assert.Equal(t, 2.92, trade.ExpectedR) // 292 / 100
}

func TestBulkUpdateGradeRiskWritesAndRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	trade := inputTrade()
	trade.Grade = "A++"
	require.NoError(t, svc.AddTrade(ctx, trade))

	updated, err := svc.BulkUpdateTrades(ctx, []string{trade.ID}, BulkUpdate{ApplyGradeRisk: true})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, err := svc.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, 125.0, got.IdealRiskAmount) // 100 default x1.25 for A++
	assert.Equal(t, 2.34, got.ExpectedR)        // 292 / 125
	assert.False(t, got.NeedsRecalc)

	risk := 150.0
	_, err = svc.BulkUpdateTrades(ctx, []string{trade.ID}, BulkUpdate{IdealRiskAmount: &risk, ApplyGradeRisk: true})
	assert.Error(t, err)
}

func TestApplyBulkUpdateLabelOnlyKeepsMetricsFresh(t *testing.T) {
	settings := models.DefaultSettings()
	trade := inputTrade()

	grade := "B"
	ApplyBulkUpdate(trade, BulkUpdate{Grade: &grade}, settings)
	assert.Equal(t, "B", trade.Grade)
	assert.False(t, trade.NeedsRecalc)
}

func TestBulkUpdateTrades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := inputTrade()
	second := inputTrade()
	second.Asset = "XAU"
	require.NoError(t, svc.AddTrade(ctx, first))
	require.NoError(t, svc.AddTrade(ctx, second))

	timeframe := "H1"
	updated, err := svc.BulkUpdateTrades(ctx, []string{first.ID, second.ID}, BulkUpdate{Timeframe: &timeframe})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	got, err := svc.GetTrade(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "H1", got.Timeframe)
}

func TestBulkUpdateRejectsEmptyChange(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.BulkUpdateTrades(context.Background(), []string{"x"}, BulkUpdate{})
	require.Error(t, err)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecalculateAllClearsStaleMarkers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	trade := inputTrade()
	require.NoError(t, svc.AddTrade(ctx, trade))

	risk := 50.0
	_, err := svc.BulkUpdateTrades(ctx, []string{trade.ID}, BulkUpdate{IdealRiskAmount: &risk})
	require.NoError(t, err)

	stale, err := svc.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.True(t, stale.NeedsRecalc)

	updated, err := svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	fresh, err := svc.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.False(t, fresh.NeedsRecalc)
	assert.Equal(t, 5.84, fresh.ExpectedR) // 292 / 50
}

func TestDedupeByTicket(t *testing.T) {
	existing := []models.Trade{{Ticket: "1001"}, {Ticket: ""}}
	candidates := []models.Trade{
		{Ticket: "1001"}, // already journaled
		{Ticket: "1002"},
		{Ticket: "1002"}, // duplicate within the batch
		{Ticket: ""},     // no ticket, always unique
	}

	unique, duplicates := DedupeByTicket(candidates, existing)
	assert.Len(t, unique, 2)
	assert.Equal(t, []string{"1001", "1002"}, duplicates)
}

func TestImportTradesSkipsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := inputTrade()
	first.Ticket = "1001"
	require.NoError(t, svc.AddTrade(ctx, first))

	batch := []models.Trade{*inputTrade(), *inputTrade()}
	batch[0].Ticket = "1001"
	batch[1].Ticket = "1002"

	result, err := svc.ImportTrades(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{"1001"}, result.DuplicateTickets)

	// Re-importing the same batch imports nothing.
	result, err = svc.ImportTrades(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Duplicates)
}

func TestRestoreMergesIntoJournal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	existing := inputTrade()
	existing.Ticket = "1001"
	require.NoError(t, svc.AddTrade(ctx, existing))

	fresh := *inputTrade()
	fresh.ID = "restored-1"
	fresh.Ticket = "1002"
	dupByTicket := *inputTrade()
	dupByTicket.ID = "restored-2"
	dupByTicket.Ticket = "1001"

	settings := models.DefaultSettings()
	settings.AccountBalance = 2500

	doc := &store.ExportDocument{
		Version:  store.ExportVersion,
		Trades:   []models.Trade{fresh, dupByTicket},
		Settings: settings,
		BalanceAdjustments: []models.BalanceAdjustment{
			{ID: "adj-1", Amount: 100, Type: models.AdjustmentAdd, Date: "2026-08-17", Time: "09:00"},
		},
	}

	result, err := svc.Restore(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Trades)
	assert.Equal(t, 1, result.Adjustments)
	assert.Equal(t, 1, result.Skipped)

	got, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.AccountBalance)

	trades, err := svc.ListTrades(ctx, store.TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, trades, 2)

	// Restoring the same document again changes nothing.
	result, err = svc.Restore(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Trades)
	assert.Equal(t, 0, result.Adjustments)
	assert.Equal(t, 3, result.Skipped)
}

func TestAdjustmentLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	adj := &models.BalanceAdjustment{Amount: 500, Type: models.AdjustmentAdd, Date: "2026-08-17", Time: "09:00", Reason: "deposit"}
	require.NoError(t, svc.AddAdjustment(ctx, adj))
	assert.NotEmpty(t, adj.ID)

	adjustments, err := svc.ListAdjustments(ctx)
	require.NoError(t, err)
	assert.Len(t, adjustments, 1)

	require.NoError(t, svc.DeleteAdjustment(ctx, adj.ID))
	assert.ErrorIs(t, svc.DeleteAdjustment(ctx, adj.ID), apperrors.ErrAdjustmentNotFound)
}

func TestAddAdjustmentValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Error(t, svc.AddAdjustment(ctx, &models.BalanceAdjustment{Amount: -5, Type: models.AdjustmentAdd}))
	assert.Error(t, svc.AddAdjustment(ctx, &models.BalanceAdjustment{Amount: 0, Type: models.AdjustmentAdd}))
	assert.Error(t, svc.AddAdjustment(ctx, &models.BalanceAdjustment{Amount: 5, Type: "multiply"}))
}
