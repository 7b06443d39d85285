// Package journal implements the mutation operations of the trading
// journal: trade CRUD, bulk updates, broker-import application, and balance
// adjustments. Every write path that touches calculator inputs recomputes
// derived fields through the metrics package before persisting.
package journal

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// Service coordinates journal mutations against the data store.
type Service struct {
	store  store.DataStore
	logger zerolog.Logger
}

// NewService creates a journal service.
func NewService(dataStore store.DataStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  dataStore,
		logger: logger,
	}
}

// AddTrade validates a trade, derives its metrics from current settings, and
// persists it. A missing ID is assigned; derived fields supplied by the
// caller are overwritten.
func (s *Service) AddTrade(ctx context.Context, trade *models.Trade) error {
	if err := validateTradeInput(trade); err != nil {
		return err
	}
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return apperrors.Wrap(err, "loading settings")
	}
	metrics.Recalculate(trade, settings)

	if err := s.store.SaveTrade(ctx, trade); err != nil {
		return apperrors.Wrap(err, "saving trade")
	}

	logging.LogTradeRecorded(s.logger, trade.ID, trade.Asset, string(trade.TradeType), trade.PnL, trade.RMultiple)
	return nil
}

// UpdateTrade replaces an existing trade's input fields and recomputes its
// derived fields. The trade must already exist.
func (s *Service) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		return apperrors.NewValidationError("id", trade.ID, "required")
	}
	if err := validateTradeInput(trade); err != nil {
		return err
	}
	if _, err := s.store.GetTrade(ctx, trade.ID); err != nil {
		return err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return apperrors.Wrap(err, "loading settings")
	}
	metrics.Recalculate(trade, settings)

	if err := s.store.UpdateTrade(ctx, trade); err != nil {
		return apperrors.Wrap(err, "updating trade")
	}

	s.logger.Info().
		Str("event", "trade_updated").
		Str("trade_id", trade.ID).
		Float64("pnl", trade.PnL).
		Msg("Trade updated")
	return nil
}

// DeleteTrade removes a trade by ID.
func (s *Service) DeleteTrade(ctx context.Context, id string) error {
	if err := s.store.DeleteTrade(ctx, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("event", "trade_deleted").
		Str("trade_id", id).
		Msg("Trade deleted")
	return nil
}

// GetTrade fetches one trade by ID.
func (s *Service) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	return s.store.GetTrade(ctx, id)
}

// ListTrades fetches trades matching the filter.
func (s *Service) ListTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	return s.store.GetTrades(ctx, filter)
}

// BulkUpdate describes a change applied to a set of trades at once. Nil
// pointer fields are left untouched. When RecalculateMetrics is false and
// the update changes a calculator input, affected trades are marked stale
// instead of silently keeping old derived values.
type BulkUpdate struct {
	System          *string
	Timeframe       *string
	Grade           *string
	IdealRiskAmount *float64
	AddTags         []string
	RemoveTags      []string
	// ApplyGradeRisk overwrites each trade's ideal risk with the
	// grade-adjusted amount for its (possibly just updated) system and
	// grade, and always recomputes.
	ApplyGradeRisk     bool
	RecalculateMetrics bool
}

func (u *BulkUpdate) isEmpty() bool {
	return u.System == nil && u.Timeframe == nil && u.Grade == nil &&
		u.IdealRiskAmount == nil && len(u.AddTags) == 0 && len(u.RemoveTags) == 0 &&
		!u.ApplyGradeRisk && !u.RecalculateMetrics
}

// ApplyBulkUpdate applies the update to a single trade in place. It is pure
// with respect to the store; settings are only needed when recomputing.
func ApplyBulkUpdate(trade *models.Trade, update BulkUpdate, settings *models.Settings) {
	if update.System != nil {
		trade.System = *update.System
	}
	if update.Timeframe != nil {
		trade.Timeframe = *update.Timeframe
	}
	if update.Grade != nil {
		trade.Grade = *update.Grade
	}

	inputChanged := false
	if update.IdealRiskAmount != nil {
		trade.IdealRiskAmount = *update.IdealRiskAmount
		inputChanged = true
	}
	if update.ApplyGradeRisk {
		trade.IdealRiskAmount = metrics.GradeAdjustedRisk(settings, trade.System, trade.Grade)
		inputChanged = true
	}

	for _, tag := range update.AddTags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !trade.HasTag(tag) {
			trade.Tags = append(trade.Tags, tag)
		}
	}
	if len(update.RemoveTags) > 0 {
		kept := trade.Tags[:0]
		for _, existing := range trade.Tags {
			remove := false
			for _, tag := range update.RemoveTags {
				if existing == tag {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, existing)
			}
		}
		trade.Tags = kept
	}

	// Writing a grade-adjusted risk always triggers a recalculation; the
	// opt-out only applies to explicit ideal-risk edits.
	if update.RecalculateMetrics || update.ApplyGradeRisk {
		metrics.Recalculate(trade, settings)
	} else if inputChanged {
		trade.NeedsRecalc = true
	}
}

// BulkUpdateTrades applies the update to every trade in ids and persists the
// results. Returns the number of trades updated. Trades are written one at a
// time; a failure stops the pass and reports how far it got.
func (s *Service) BulkUpdateTrades(ctx context.Context, ids []string, update BulkUpdate) (int, error) {
	if update.isEmpty() {
		return 0, apperrors.NewValidationError("update", update, "no fields to update")
	}
	if update.ApplyGradeRisk && update.IdealRiskAmount != nil {
		return 0, apperrors.NewValidationError("idealRiskAmount", *update.IdealRiskAmount, "cannot combine with grade-adjusted risk")
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "loading settings")
	}

	updated := 0
	for _, id := range ids {
		trade, err := s.store.GetTrade(ctx, id)
		if err != nil {
			return updated, err
		}
		ApplyBulkUpdate(trade, update, settings)
		if err := s.store.UpdateTrade(ctx, trade); err != nil {
			return updated, apperrors.Wrapf(err, "updating trade %s", id)
		}
		updated++
	}

	logging.LogBulkUpdate(s.logger, updated, update.RecalculateMetrics)
	return updated, nil
}

// RecalculateAll recomputes derived fields for every stored trade against
// current settings. Used after settings changes (fee table, tolerance,
// session boundaries) and to clear stale markers left by bulk edits.
func (s *Service) RecalculateAll(ctx context.Context) (int, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "loading settings")
	}
	trades, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return 0, apperrors.Wrap(err, "loading trades")
	}

	updated := 0
	for i := range trades {
		metrics.Recalculate(&trades[i], settings)
		if err := s.store.UpdateTrade(ctx, &trades[i]); err != nil {
			return updated, apperrors.Wrapf(err, "updating trade %s", trades[i].ID)
		}
		updated++
	}

	s.logger.Info().
		Str("event", "recalculate_all").
		Int("updated", updated).
		Msg("Derived fields recomputed")
	return updated, nil
}

// ImportResult summarizes an import batch.
type ImportResult struct {
	Imported         int
	Duplicates       int
	Skipped          int
	DuplicateTickets []string
	RowErrors        []error
}

// DedupeByTicket splits candidates into trades whose ticket is not already
// present and the tickets that were. Candidates without a ticket are always
// unique. Duplicates within the candidate batch itself are also dropped.
func DedupeByTicket(candidates []models.Trade, existing []models.Trade) (unique []models.Trade, duplicates []string) {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		if t.Ticket != "" {
			seen[t.Ticket] = true
		}
	}

	for _, c := range candidates {
		if c.Ticket != "" && seen[c.Ticket] {
			duplicates = append(duplicates, c.Ticket)
			continue
		}
		if c.Ticket != "" {
			seen[c.Ticket] = true
		}
		unique = append(unique, c)
	}
	return unique, duplicates
}

// ImportTrades persists a batch of already-converted trades, skipping any
// whose broker ticket is already in the journal. Duplicates are reported,
// not treated as errors.
func (s *Service) ImportTrades(ctx context.Context, candidates []models.Trade) (*ImportResult, error) {
	existing, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "loading trades")
	}

	unique, duplicates := DedupeByTicket(candidates, existing)

	result := &ImportResult{
		Duplicates:       len(duplicates),
		DuplicateTickets: duplicates,
	}
	for i := range unique {
		trade := &unique[i]
		if trade.ID == "" {
			trade.ID = uuid.New().String()
		}
		if err := s.store.SaveTrade(ctx, trade); err != nil {
			return result, apperrors.Wrapf(err, "saving imported trade (ticket %s)", trade.Ticket)
		}
		result.Imported++
	}

	logging.LogImportBatch(s.logger, result.Imported, result.Duplicates, result.Skipped)
	return result, nil
}

// AddAdjustment records a manual balance correction.
func (s *Service) AddAdjustment(ctx context.Context, adj *models.BalanceAdjustment) error {
	if adj.Amount <= 0 {
		return apperrors.NewValidationError("amount", adj.Amount, "must be positive")
	}
	if adj.Type != models.AdjustmentAdd && adj.Type != models.AdjustmentSubtract {
		return apperrors.NewValidationError("type", adj.Type, "must be add or subtract")
	}
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}

	if err := s.store.SaveAdjustment(ctx, adj); err != nil {
		return apperrors.Wrap(err, "saving adjustment")
	}

	logging.LogBalanceAdjustment(s.logger, adj.ID, string(adj.Type), adj.Amount)
	return nil
}

// DeleteAdjustment removes a balance adjustment by ID.
func (s *Service) DeleteAdjustment(ctx context.Context, id string) error {
	return s.store.DeleteAdjustment(ctx, id)
}

// ListAdjustments fetches all balance adjustments.
func (s *Service) ListAdjustments(ctx context.Context) ([]models.BalanceAdjustment, error) {
	return s.store.GetAdjustments(ctx)
}

// Settings returns the current journal settings, default-merged.
func (s *Service) Settings(ctx context.Context) (*models.Settings, error) {
	return s.store.GetSettings(ctx)
}

// SaveSettings persists the journal settings.
func (s *Service) SaveSettings(ctx context.Context, settings *models.Settings) error {
	return s.store.SaveSettings(ctx, settings)
}

// RestoreResult summarizes a journal restore.
type RestoreResult struct {
	Trades      int
	Adjustments int
	Skipped     int
}

// Restore loads a full export document into the journal. Settings are
// replaced; trades and adjustments already present (matched by ID or broker
// ticket) are skipped rather than overwritten, so restoring into a
// non-empty journal merges instead of clobbering.
func (s *Service) Restore(ctx context.Context, doc *store.ExportDocument) (*RestoreResult, error) {
	if doc.Settings != nil {
		if err := s.store.SaveSettings(ctx, doc.Settings); err != nil {
			return nil, apperrors.Wrap(err, "restoring settings")
		}
	}

	existing, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "loading trades")
	}
	knownIDs := make(map[string]bool, len(existing))
	knownTickets := make(map[string]bool, len(existing))
	for _, t := range existing {
		knownIDs[t.ID] = true
		if t.Ticket != "" {
			knownTickets[t.Ticket] = true
		}
	}

	result := &RestoreResult{}
	for i := range doc.Trades {
		trade := &doc.Trades[i]
		if knownIDs[trade.ID] || (trade.Ticket != "" && knownTickets[trade.Ticket]) {
			result.Skipped++
			continue
		}
		if trade.ID == "" {
			trade.ID = uuid.New().String()
		}
		if err := s.store.SaveTrade(ctx, trade); err != nil {
			return result, apperrors.Wrapf(err, "restoring trade %s", trade.ID)
		}
		result.Trades++
	}

	adjustments, err := s.store.GetAdjustments(ctx)
	if err != nil {
		return result, apperrors.Wrap(err, "loading adjustments")
	}
	knownAdj := make(map[string]bool, len(adjustments))
	for _, a := range adjustments {
		knownAdj[a.ID] = true
	}
	for i := range doc.BalanceAdjustments {
		adj := &doc.BalanceAdjustments[i]
		if knownAdj[adj.ID] {
			result.Skipped++
			continue
		}
		if adj.ID == "" {
			adj.ID = uuid.New().String()
		}
		if err := s.store.SaveAdjustment(ctx, adj); err != nil {
			return result, apperrors.Wrapf(err, "restoring adjustment %s", adj.ID)
		}
		result.Adjustments++
	}

	s.logger.Info().
		Int("trades", result.Trades).
		Int("adjustments", result.Adjustments).
		Int("skipped", result.Skipped).
		Msg("journal_restored")
	return result, nil
}

func validateTradeInput(trade *models.Trade) error {
	if strings.TrimSpace(trade.Asset) == "" {
		return apperrors.NewValidationError("asset", trade.Asset, "required")
	}
	if trade.TradeType != models.Long && trade.TradeType != models.Short {
		return apperrors.NewValidationError("tradeType", trade.TradeType, "must be Long or Short")
	}
	if trade.PositionSize < 0 {
		return apperrors.NewValidationError("positionSize", trade.PositionSize, "must not be negative")
	}
	if trade.EntryPrice < 0 || trade.ExitPrice < 0 || trade.StopLoss < 0 {
		return apperrors.NewValidationError("price", trade.EntryPrice, "prices must not be negative")
	}
	if trade.Date == "" {
		return apperrors.NewValidationError("date", trade.Date, "required")
	}
	return nil
}
