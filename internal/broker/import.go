// Package broker converts broker statement exports into journal trades.
// Statements arrive as CSV with one closed position per row; conversion
// derives the full metric set so imported trades look like hand-entered
// ones.
package broker

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/sessions"
)

// ImportedSystem labels trades that came from a broker statement.
const ImportedSystem = "Imported"

// Statement timestamps come in a few shapes depending on the export tool.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStatement reads a broker CSV statement into raw rows. Column order
// does not matter; rows are matched to fields by header name.
func ParseStatement(r io.Reader) ([]models.BrokerTrade, error) {
	var rows []models.BrokerTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperrors.Wrap(err, "parsing broker statement")
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyImport
	}
	return rows, nil
}

// Convert turns one statement row into a journal trade. idealRisk is the
// risk the trader intended per position; imported trades have no recorded
// intent, so the caller supplies a default.
//
// Fees prefer the broker's reported commission over the fee table; the fee
// table is the fallback when the statement carries no commission. P&L in the
// statement is gross, so the net figure stored on the trade subtracts the
// fee.
func Convert(row models.BrokerTrade, settings *models.Settings, idealRisk float64) (*models.Trade, error) {
	opening, err := parseStatementTime(row.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time %q: %w", row.OpeningTime, err)
	}
	closing, err := parseStatementTime(row.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time %q: %w", row.ClosingTime, err)
	}

	entryPrice, err := parseFloat("opening_price", row.OpeningPrice)
	if err != nil {
		return nil, err
	}
	exitPrice, err := parseFloat("closing_price", row.ClosingPrice)
	if err != nil {
		return nil, err
	}
	stopLoss, err := parseFloat("stop_loss", row.StopLoss)
	if err != nil {
		return nil, err
	}
	positionSize, err := parseFloat("lots", row.Lots)
	if err != nil {
		return nil, err
	}
	grossPnL, err := parseFloat("profit_usd", row.ProfitUSD)
	if err != nil {
		return nil, err
	}
	takeProfit, _ := strconv.ParseFloat(strings.TrimSpace(row.TakeProfit), 64)
	commission, _ := strconv.ParseFloat(strings.TrimSpace(row.CommissionUSD), 64)

	tradeType := models.Short
	if strings.EqualFold(row.Type, "buy") {
		tradeType = models.Long
	}

	asset := metrics.NormalizeAssetKey(row.Symbol)

	fee := math.Abs(commission)
	if fee == 0 {
		fee = positionSize * settings.AssetFees[asset]
	}

	riskAmount := math.Abs(entryPrice-stopLoss) * positionSize
	actualRiskAmount := riskAmount + fee
	netPnL := grossPnL - fee

	// The statement reports realized P&L, so the R-multiple here is on a net
	// basis, unlike hand-entered trades where it is gross over price risk.
	var rMultiple float64
	if riskAmount > 0 {
		rMultiple = netPnL / riskAmount
	}
	var expectedR float64
	if idealRisk > 0 {
		expectedR = netPnL / idealRisk
	}
	riskDeviation := metrics.RiskDeviationPct(actualRiskAmount, idealRisk)
	overRisked, underRisked := metrics.RiskFlags(riskDeviation, settings.RiskDeviationTolerance)
	riskPercent := metrics.RiskPercent(actualRiskAmount, settings.AccountBalance)
	outcome := metrics.ClassifyOutcome(rMultiple)

	date := opening.Format("2006-01-02")
	clock := opening.Format("15:04")

	trade := &models.Trade{
		Date:            date,
		Time:            clock,
		EndDate:         closing.Format("2006-01-02"),
		EndTime:         closing.Format("15:04"),
		Asset:           asset,
		TradeType:       tradeType,
		EntryPrice:      entryPrice,
		ExitPrice:       exitPrice,
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		PositionSize:    positionSize,
		IdealRiskAmount: idealRisk,
		System:          ImportedSystem,
		Timeframe:       "",
		Grade:           gradeFromCloseReason(row.CloseReason, outcome),
		Tags:            []string{ImportedSystem},
		Notes:           fmt.Sprintf("Imported from broker. Close reason: %s", row.CloseReason),
		Ticket:          row.Ticket,

		Fee:              metrics.Round2(fee),
		RiskAmount:       metrics.Round2(riskAmount),
		ActualRiskAmount: metrics.Round2(actualRiskAmount),
		PnL:              metrics.Round2(netPnL),
		RMultiple:        metrics.Round2(rMultiple),
		ExpectedR:        metrics.Round2(expectedR),
		RiskPercent:      metrics.Round2(riskPercent),
		RiskDeviation:    metrics.Round2(riskDeviation),
		IsOverRisked:     overRisked,
		IsUnderRisked:    underRisked,
		Outcome:          outcome,
		Session:          sessions.Classify(clock, settings.TradingSessions).Name,
		DayOfWeek:        sessions.DayOfWeek(date),
		Duration:         formatDuration(closing.Sub(opening)),
	}
	return trade, nil
}

// ConvertAll converts every statement row. With strict set, the first bad
// row aborts the batch; otherwise bad rows are collected as ImportRowErrors
// and the rest convert. Row numbers are 1-based, excluding the header.
func ConvertAll(rows []models.BrokerTrade, settings *models.Settings, idealRisk float64, strict bool) ([]models.Trade, []error, error) {
	trades := make([]models.Trade, 0, len(rows))
	var rowErrs []error

	for i, row := range rows {
		trade, err := Convert(row, settings, idealRisk)
		if err != nil {
			rowErr := apperrors.NewImportRowError(i+1, row.Ticket, err)
			if strict {
				return nil, nil, rowErr
			}
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		trades = append(trades, *trade)
	}
	return trades, rowErrs, nil
}

// IdealStopLoss back-computes where the stop should have sat for the trade's
// price risk plus fee to equal the intended risk. Used in import previews to
// show stop placement drift.
func IdealStopLoss(entryPrice, positionSize, idealRisk, fee float64, tradeType models.TradeType) float64 {
	if positionSize <= 0 {
		return entryPrice
	}
	idealPriceRisk := math.Max(0, idealRisk-fee)
	if tradeType == models.Long {
		return entryPrice - idealPriceRisk/positionSize
	}
	return entryPrice + idealPriceRisk/positionSize
}

func gradeFromCloseReason(reason string, outcome models.Outcome) string {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case "tp":
		return "A"
	case "sl":
		if outcome == models.Win {
			return "B+"
		}
		return "D"
	default:
		return "C"
	}
}

func parseStatementTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp")
}

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, apperrors.NewValidationError(field, value, "not a number")
	}
	return f, nil
}

// formatDuration renders a hold time as "Xd Xh Xm Xs", omitting leading
// zero components.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d.Seconds())
	days := totalSeconds / (24 * 60 * 60)
	hours := (totalSeconds % (24 * 60 * 60)) / (60 * 60)
	minutes := (totalSeconds % (60 * 60)) / 60
	seconds := totalSeconds % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	if seconds > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ds", seconds)
	}
	return strings.TrimSpace(b.String())
}
