package models

// TradingSession is a named time-of-day bucket on the 24-hour UTC clock.
// A session whose StartTime is later than its EndTime wraps past midnight.
type TradingSession struct {
	Name        string `json:"name"`
	StartTime   string `json:"startTime"` // HH:MM
	EndTime     string `json:"endTime"`   // HH:MM
	Color       string `json:"color"`
	Description string `json:"description"`
}

// AdjustmentType is the direction of a manual balance correction.
type AdjustmentType string

const (
	AdjustmentAdd      AdjustmentType = "add"
	AdjustmentSubtract AdjustmentType = "subtract"
)

// BalanceAdjustment is a manual correction to the account balance. Created
// and deleted by user action only, never mutated.
type BalanceAdjustment struct {
	ID     string         `json:"id"`
	Amount float64        `json:"amount"` // always positive; Type carries the sign
	Type   AdjustmentType `json:"type"`
	Date   string         `json:"date"`
	Time   string         `json:"time"`
	Reason string         `json:"reason"`
	Notes  string         `json:"notes,omitempty"`
}

// Signed returns the adjustment amount with its sign applied.
func (a *BalanceAdjustment) Signed() float64 {
	if a.Type == AdjustmentSubtract {
		return -a.Amount
	}
	return a.Amount
}

// BrokerTrade is one row of a broker statement export. All fields arrive as
// strings; the broker importer parses and converts them.
type BrokerTrade struct {
	Ticket        string `csv:"ticket"`
	OpeningTime   string `csv:"opening_time_utc"`
	ClosingTime   string `csv:"closing_time_utc"`
	Type          string `csv:"type"` // "buy" or "sell"
	Lots          string `csv:"lots"`
	Symbol        string `csv:"symbol"`
	OpeningPrice  string `csv:"opening_price"`
	ClosingPrice  string `csv:"closing_price"`
	StopLoss      string `csv:"stop_loss"`
	TakeProfit    string `csv:"take_profit"`
	CommissionUSD string `csv:"commission_usd"`
	ProfitUSD     string `csv:"profit_usd"`
	CloseReason   string `csv:"close_reason"` // "tp", "sl", ...
}
