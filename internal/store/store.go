// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"tradejournal/internal/models"
)

// DataStore defines the interface for journal persistence. Three top-level
// collections are persisted: trades, settings, and balance adjustments.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Settings (single instance, default-merged on load)
	SaveSettings(ctx context.Context, settings *models.Settings) error
	GetSettings(ctx context.Context) (*models.Settings, error)

	// Balance adjustments
	SaveAdjustment(ctx context.Context, adj *models.BalanceAdjustment) error
	DeleteAdjustment(ctx context.Context, id string) error
	GetAdjustments(ctx context.Context) ([]models.BalanceAdjustment, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Asset     string
	System    string
	Timeframe string
	Session   string
	Outcome   string
	Grade     string
	DateFrom  string // YYYY-MM-DD inclusive
	DateTo    string // YYYY-MM-DD inclusive
	Ticket    string
	Limit     int
}
