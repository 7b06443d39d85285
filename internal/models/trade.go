// Package models defines the core data types of the trading journal.
package models

// TradeType is the direction of a trade.
type TradeType string

const (
	Long  TradeType = "Long"
	Short TradeType = "Short"
)

// Outcome is the realized result of a trade, classified from its R-multiple.
type Outcome string

const (
	Win       Outcome = "Win"
	Loss      Outcome = "Loss"
	Breakeven Outcome = "Breakeven"
)

// Trade is one executed position. The input fields are user-supplied; the
// derived fields are always recomputable from the inputs and the current
// Settings via the metrics calculator, and must never be edited by hand.
type Trade struct {
	ID string `json:"id" csv:"ID"`

	// Inputs.
	Date            string    `json:"date" csv:"Date"` // YYYY-MM-DD
	Time            string    `json:"time" csv:"Time"` // HH:MM, session-reference time (UTC)
	EndDate         string    `json:"endDate,omitempty" csv:"End Date"`
	EndTime         string    `json:"endTime,omitempty" csv:"End Time"`
	Asset           string    `json:"asset" csv:"Asset"`
	TradeType       TradeType `json:"tradeType" csv:"Trade Type"`
	EntryPrice      float64   `json:"entryPrice" csv:"Entry Price"`
	ExitPrice       float64   `json:"exitPrice" csv:"Exit Price"`
	StopLoss        float64   `json:"stopLoss" csv:"Stop Loss"`
	TakeProfit      float64   `json:"takeProfit" csv:"Take Profit"`
	PositionSize    float64   `json:"positionSize" csv:"Position Size"`
	IdealRiskAmount float64   `json:"idealRiskAmount" csv:"Ideal Risk Amount"`
	System          string    `json:"system" csv:"System"`
	Timeframe       string    `json:"timeframe" csv:"Timeframe"`
	Grade           string    `json:"grade" csv:"Grade"`
	Tags            []string  `json:"tags" csv:"-"`
	Notes           string    `json:"notes" csv:"Notes"`
	Ticket          string    `json:"ticket,omitempty" csv:"Ticket"` // broker reference, used for de-duplication

	// Derived.
	Fee              float64 `json:"fee" csv:"Fee"`
	RiskAmount       float64 `json:"riskAmount" csv:"Risk Amount"`
	ActualRiskAmount float64 `json:"actualRiskAmount" csv:"Actual Risk Amount"`
	PnL              float64 `json:"pnl" csv:"P&L"` // net, after fee
	RMultiple        float64 `json:"rMultiple" csv:"R Multiple"`
	ExpectedR        float64 `json:"expectedR" csv:"Expected R"`
	RiskPercent      float64 `json:"riskPercent" csv:"Risk %"`
	RiskDeviation    float64 `json:"riskDeviation" csv:"Risk Deviation"`
	IsOverRisked     bool    `json:"isOverRisked" csv:"-"`
	IsUnderRisked    bool    `json:"isUnderRisked" csv:"-"`
	Outcome          Outcome `json:"outcome" csv:"Outcome"`
	Session          string  `json:"session" csv:"Session"`
	DayOfWeek        string  `json:"dayOfWeek" csv:"Day of Week"`
	Duration         string  `json:"duration" csv:"Duration"`

	// NeedsRecalc marks derived fields as stale after a bulk edit that
	// changed calculator inputs without requesting a recompute.
	NeedsRecalc bool `json:"needsRecalc,omitempty" csv:"-"`
}

// HasTag reports whether the trade carries the given tag.
func (t *Trade) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// TradeStats is a pure projection over the full trade collection. It is never
// persisted; it is recomputed on every read.
type TradeStats struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"` // by net P&L sign (canonical)
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"`
	EVWinRate     float64 `json:"evWinRate"` // by expected-R sign; quality metric, not the headline rate

	TotalPnL  float64 `json:"totalPnL"` // net
	GrossPnL  float64 `json:"grossPnL"` // totalPnL + totalFees
	TotalFees float64 `json:"totalFees"`

	TotalR           float64 `json:"totalR"`
	TotalExpectedR   float64 `json:"totalExpectedR"`
	AverageR         float64 `json:"averageR"`
	AverageExpectedR float64 `json:"averageExpectedR"`
	ExpectedValue    float64 `json:"expectedValue"` // alias of AverageExpectedR

	ProfitFactor float64 `json:"profitFactor"` // +Inf when grossLoss == 0 and grossProfit > 0
	Expectancy   float64 `json:"expectancy"`   // average net P&L per trade, in currency

	LargestWin  float64 `json:"largestWin"`
	LargestLoss float64 `json:"largestLoss"`

	TotalRisk         float64 `json:"totalRisk"`
	TotalIdealRisk    float64 `json:"totalIdealRisk"`
	OverRiskedTrades  int     `json:"overRiskedTrades"`
	UnderRiskedTrades int     `json:"underRiskedTrades"`
	GoodRiskTrades    int     `json:"goodRiskTrades"`
	AvgRiskDeviation  float64 `json:"avgRiskDeviation"`

	AdjustedBalance float64 `json:"adjustedBalance"` // accountBalance + adjustments + totalPnL
}
