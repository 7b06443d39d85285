package metrics

import "tradejournal/internal/models"

// GradeOptions lists the setup-quality labels from best to worst.
var GradeOptions = []string{"A++++", "A+++", "A++", "A+", "A", "B", "C", "D", "E", "F"}

// gradeRiskMultipliers scales a system's base ideal risk by setup quality.
var gradeRiskMultipliers = map[string]float64{
	"A++++": 2.5,
	"A+++":  2.0,
	"A++":   1.25,
	"A+":    1.0,
	"A":     0.8,
	"B":     0.5,
	"C":     0.3,
	"D":     0.1,
	"E":     0.05,
	"F":     0.01,
}

// GradeRiskMultiplier returns the risk multiplier for a grade label.
// Unknown grades scale by 1.0.
func GradeRiskMultiplier(grade string) float64 {
	if m, ok := gradeRiskMultipliers[grade]; ok {
		return m
	}
	return 1.0
}

// GradeAdjustedRisk computes the ideal risk for a trade from its system's
// base risk and its grade. Writing the result into a trade's IdealRiskAmount
// should always be followed by a recalculation.
func GradeAdjustedRisk(settings *models.Settings, system, grade string) float64 {
	return settings.IdealRiskFor(system) * GradeRiskMultiplier(grade)
}
