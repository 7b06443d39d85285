package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradejournal/internal/errors"
	"tradejournal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table: input columns plus derived metric columns
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		end_date TEXT,
		end_time TEXT,
		asset TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL,
		position_size REAL NOT NULL,
		ideal_risk_amount REAL NOT NULL,
		system TEXT,
		timeframe TEXT,
		grade TEXT,
		tags TEXT,
		notes TEXT,
		ticket TEXT,
		fee REAL,
		risk_amount REAL,
		actual_risk_amount REAL,
		pnl REAL,
		r_multiple REAL,
		expected_r REAL,
		risk_percent REAL,
		risk_deviation REAL,
		is_over_risked INTEGER DEFAULT 0,
		is_under_risked INTEGER DEFAULT 0,
		outcome TEXT,
		session TEXT,
		day_of_week TEXT,
		duration TEXT,
		needs_recalc INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Settings stored as a single JSON document
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Balance adjustments table
	CREATE TABLE IF NOT EXISTS balance_adjustments (
		id TEXT PRIMARY KEY,
		amount REAL NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		reason TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
	CREATE INDEX IF NOT EXISTS idx_trades_asset ON trades(asset);
	CREATE INDEX IF NOT EXISTS idx_trades_system ON trades(system);
	CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session);
	CREATE INDEX IF NOT EXISTS idx_trades_ticket ON trades(ticket);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const tradeColumns = `id, date, time, end_date, end_time, asset, trade_type, entry_price, exit_price,
	stop_loss, take_profit, position_size, ideal_risk_amount, system, timeframe, grade, tags, notes,
	ticket, fee, risk_amount, actual_risk_amount, pnl, r_multiple, expected_r, risk_percent,
	risk_deviation, is_over_risked, is_under_risked, outcome, session, day_of_week, duration, needs_recalc`

// SaveTrade inserts a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	return s.writeTrade(ctx, trade, "INSERT INTO")
}

// UpdateTrade replaces a trade by ID.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	return s.writeTrade(ctx, trade, "INSERT OR REPLACE INTO")
}

func (s *SQLiteStore) writeTrade(ctx context.Context, trade *models.Trade, verb string) error {
	tags, _ := json.Marshal(trade.Tags)
	query := verb + ` trades (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		trade.ID, trade.Date, trade.Time, trade.EndDate, trade.EndTime, trade.Asset, trade.TradeType,
		trade.EntryPrice, trade.ExitPrice, trade.StopLoss, trade.TakeProfit, trade.PositionSize,
		trade.IdealRiskAmount, trade.System, trade.Timeframe, trade.Grade, string(tags), trade.Notes,
		trade.Ticket, trade.Fee, trade.RiskAmount, trade.ActualRiskAmount, trade.PnL, trade.RMultiple,
		trade.ExpectedR, trade.RiskPercent, trade.RiskDeviation, boolToInt(trade.IsOverRisked),
		boolToInt(trade.IsUnderRisked), trade.Outcome, trade.Session, trade.DayOfWeek, trade.Duration,
		boolToInt(trade.NeedsRecalc))
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// DeleteTrade removes a trade by ID.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrTradeNotFound
	}
	return nil
}

// GetTrade retrieves one trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// GetTrades retrieves trades matching the filter, newest first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	args := []interface{}{}

	if filter.Asset != "" {
		query += " AND asset = ?"
		args = append(args, filter.Asset)
	}
	if filter.System != "" {
		query += " AND system = ?"
		args = append(args, filter.System)
	}
	if filter.Timeframe != "" {
		query += " AND timeframe = ?"
		args = append(args, filter.Timeframe)
	}
	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, filter.Session)
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}
	if filter.Grade != "" {
		query += " AND grade = ?"
		args = append(args, filter.Grade)
	}
	if filter.DateFrom != "" {
		query += " AND date >= ?"
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += " AND date <= ?"
		args = append(args, filter.DateTo)
	}
	if filter.Ticket != "" {
		query += " AND ticket = ?"
		args = append(args, filter.Ticket)
	}

	query += " ORDER BY date DESC, time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var tagsJSON string
	var overRisked, underRisked, needsRecalc int

	err := row.Scan(&t.ID, &t.Date, &t.Time, &t.EndDate, &t.EndTime, &t.Asset, &t.TradeType,
		&t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TakeProfit, &t.PositionSize,
		&t.IdealRiskAmount, &t.System, &t.Timeframe, &t.Grade, &tagsJSON, &t.Notes,
		&t.Ticket, &t.Fee, &t.RiskAmount, &t.ActualRiskAmount, &t.PnL, &t.RMultiple,
		&t.ExpectedR, &t.RiskPercent, &t.RiskDeviation, &overRisked, &underRisked,
		&t.Outcome, &t.Session, &t.DayOfWeek, &t.Duration, &needsRecalc)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(tagsJSON), &t.Tags)
	t.IsOverRisked = overRisked == 1
	t.IsUnderRisked = underRisked == 1
	t.NeedsRecalc = needsRecalc == 1
	return &t, nil
}

// SaveSettings persists the settings document as a whole.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, data, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings loads settings, default-merging fields missing from older
// persisted shapes. A missing row yields full defaults, never an error.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := &models.Settings{}
	if err := json.Unmarshal([]byte(data), settings); err != nil {
		// Unreadable settings fall back to defaults rather than bricking the journal.
		return models.DefaultSettings(), nil
	}
	settings.MergeDefaults()
	return settings, nil
}

// SaveAdjustment inserts a balance adjustment.
func (s *SQLiteStore) SaveAdjustment(ctx context.Context, adj *models.BalanceAdjustment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balance_adjustments (id, amount, type, date, time, reason, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, adj.ID, adj.Amount, adj.Type, adj.Date, adj.Time, adj.Reason, adj.Notes)
	if err != nil {
		return fmt.Errorf("failed to save adjustment: %w", err)
	}
	return nil
}

// DeleteAdjustment removes a balance adjustment by ID.
func (s *SQLiteStore) DeleteAdjustment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM balance_adjustments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete adjustment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrAdjustmentNotFound
	}
	return nil
}

// GetAdjustments retrieves all balance adjustments, newest first.
func (s *SQLiteStore) GetAdjustments(ctx context.Context) ([]models.BalanceAdjustment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, type, date, time, reason, notes
		FROM balance_adjustments ORDER BY date DESC, time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []models.BalanceAdjustment
	for rows.Next() {
		var a models.BalanceAdjustment
		if err := rows.Scan(&a.ID, &a.Amount, &a.Type, &a.Date, &a.Time, &a.Reason, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
