package store

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gocarina/gocsv"

	"tradejournal/internal/models"
)

// ExportVersion tags bulk export documents.
const ExportVersion = "1.0"

// ExportDocument is the bulk export/import shape: the three persisted
// collections plus an optional stats snapshot.
type ExportDocument struct {
	Version            string                     `json:"version"`
	ExportDate         string                     `json:"exportDate"`
	Trades             []models.Trade             `json:"trades"`
	Settings           *models.Settings           `json:"settings"`
	BalanceAdjustments []models.BalanceAdjustment `json:"balanceAdjustments"`
	Stats              *models.TradeStats         `json:"stats,omitempty"`
}

// NewExportDocument assembles a bulk export document stamped with the
// current time.
func NewExportDocument(trades []models.Trade, settings *models.Settings, adjustments []models.BalanceAdjustment, stats *models.TradeStats) *ExportDocument {
	doc := &ExportDocument{
		Version:            ExportVersion,
		ExportDate:         time.Now().UTC().Format(time.RFC3339),
		Trades:             trades,
		Settings:           settings,
		BalanceAdjustments: adjustments,
	}
	if stats != nil {
		// JSON has no representation for +Inf; an infinite profit factor
		// (no losing trades yet) is exported as 0 and recomputed on read.
		snapshot := *stats
		if math.IsInf(snapshot.ProfitFactor, 0) {
			snapshot.ProfitFactor = 0
		}
		doc.Stats = &snapshot
	}
	return doc
}

// WriteJSON writes the document as indented JSON.
func (d *ExportDocument) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadExportDocument parses a bulk export document. Settings shape drift is
// tolerated via default-merge; stats snapshots are ignored on import since
// they are always recomputed.
func ReadExportDocument(r io.Reader) (*ExportDocument, error) {
	doc := &ExportDocument{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if doc.Settings != nil {
		doc.Settings.MergeDefaults()
	}
	doc.Stats = nil
	return doc, nil
}

// WriteTradesCSV writes the trade collection as CSV with the journal's
// standard column set.
func WriteTradesCSV(w io.Writer, trades []models.Trade) error {
	if err := gocsv.Marshal(&trades, w); err != nil {
		return fmt.Errorf("failed to write trades CSV: %w", err)
	}
	return nil
}
