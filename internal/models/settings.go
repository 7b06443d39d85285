package models

// Settings is the process-wide journal configuration. It is persisted as a
// whole and passed read-only into the calculator and aggregator.
type Settings struct {
	AccountBalance         float64            `json:"accountBalance"`
	AssetFees              map[string]float64 `json:"assetFees"` // normalized asset key -> fee per unit
	TradingSystems         []string           `json:"tradingSystems"`
	TradingSessions        []TradingSession   `json:"tradingSessions"`
	RiskDeviationTolerance float64            `json:"riskDeviationTolerance"` // percent
	SystemIdealRisk        map[string]float64 `json:"systemIdealRisk"`
	DefaultIdealRisk       float64            `json:"defaultIdealRisk"`
}

// Defaults carried over from the journal's seed configuration.
const (
	DefaultRiskTolerance  = 10.0
	DefaultAccountBalance = 100.0
	DefaultIdealRisk      = 100.0
)

// DefaultTradingSystems is the seed list of system labels.
var DefaultTradingSystems = []string{
	"Z-score",
	"EMT",
	"NYC Breakout",
	"London Open",
	"Scalping",
	"Swing Trading",
	"Mean Reversion",
	"Momentum",
	"Breakout",
	"Other",
}

// DefaultAssetFees is the seed fee-per-unit schedule.
var DefaultAssetFees = map[string]float64{
	"BTC": 16,
	"ETH": 1.3,
	"XAU": 11,
}

// DefaultSettings returns a fully populated Settings value.
func DefaultSettings() *Settings {
	fees := make(map[string]float64, len(DefaultAssetFees))
	for k, v := range DefaultAssetFees {
		fees[k] = v
	}
	systems := make([]string, len(DefaultTradingSystems))
	copy(systems, DefaultTradingSystems)

	return &Settings{
		AccountBalance:         DefaultAccountBalance,
		AssetFees:              fees,
		TradingSystems:         systems,
		TradingSessions:        DefaultTradingSessions(),
		RiskDeviationTolerance: DefaultRiskTolerance,
		SystemIdealRisk:        make(map[string]float64),
		DefaultIdealRisk:       DefaultIdealRisk,
	}
}

// DefaultTradingSessions is the fallback 4-session UTC partition.
func DefaultTradingSessions() []TradingSession {
	return []TradingSession{
		{Name: "Day Open", StartTime: "00:00", EndTime: "07:00", Color: "#6366f1", Description: "Early Asian session"},
		{Name: "London", StartTime: "07:00", EndTime: "13:00", Color: "#10b981", Description: "London trading session"},
		{Name: "New York", StartTime: "13:00", EndTime: "20:00", Color: "#f59e0b", Description: "New York trading session"},
		{Name: "N/A", StartTime: "20:00", EndTime: "23:59", Color: "#6b7280", Description: "Low activity period"},
	}
}

// MergeDefaults fills in fields missing from settings persisted by older
// versions. Shape drift is tolerated, never a hard failure.
func (s *Settings) MergeDefaults() {
	if s.AccountBalance <= 0 {
		s.AccountBalance = DefaultAccountBalance
	}
	if s.AssetFees == nil {
		s.AssetFees = make(map[string]float64, len(DefaultAssetFees))
		for k, v := range DefaultAssetFees {
			s.AssetFees[k] = v
		}
	}
	if len(s.TradingSystems) == 0 {
		s.TradingSystems = make([]string, len(DefaultTradingSystems))
		copy(s.TradingSystems, DefaultTradingSystems)
	}
	if len(s.TradingSessions) == 0 {
		s.TradingSessions = DefaultTradingSessions()
	}
	if s.RiskDeviationTolerance <= 0 {
		s.RiskDeviationTolerance = DefaultRiskTolerance
	}
	if s.SystemIdealRisk == nil {
		s.SystemIdealRisk = make(map[string]float64)
	}
	if s.DefaultIdealRisk <= 0 {
		s.DefaultIdealRisk = DefaultIdealRisk
	}
}

// IdealRiskFor returns the ideal risk amount for a system, falling back to
// the default when no per-system override exists.
func (s *Settings) IdealRiskFor(system string) float64 {
	if risk, ok := s.SystemIdealRisk[system]; ok && risk > 0 {
		return risk
	}
	return s.DefaultIdealRisk
}
