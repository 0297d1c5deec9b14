// Package risk assigns a risk tier to a single defect record by a fixed,
// ordered rule chain. Classification is a total pure function: a missing
// measurement simply never triggers its rule.
package risk

import (
	"strings"

	"pipeline-insights-go/internal/types"
)

// Thresholds configures the classifier. Tests and deployments override
// individual values; shared package state is never mutated.
type Thresholds struct {
	ERFHighRisk      float64
	ERFMediumRisk    float64
	WallCriticalMM   float64
	DepthCriticalPct float64
	DepthHighPct     float64

	// Lowercased substrings of the repair flag that mandate immediate
	// repair and force High regardless of any measurement.
	RepairTriggers []string
}

// DefaultThresholds returns the engineering defaults used in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ERFHighRisk:      0.8,
		ERFMediumRisk:    0.5,
		WallCriticalMM:   3.0,
		DepthCriticalPct: 40,
		DepthHighPct:     25,
		RepairTriggers:   []string{"обязателен", "немедленн"},
	}
}

// Classify returns the tier of one defect. Rules are evaluated in order and
// the first match wins; any single critical signal is sufficient for High.
func Classify(rec types.DefectRecord, t Thresholds) types.RiskTier {
	flag := strings.ToLower(rec.RepairFlag)
	for _, trigger := range t.RepairTriggers {
		if trigger != "" && strings.Contains(flag, trigger) {
			return types.RiskHigh
		}
	}

	if below(rec.ERFB31G, t.ERFHighRisk) {
		return types.RiskHigh
	}
	if below(rec.ERFDNV, t.ERFHighRisk) {
		return types.RiskHigh
	}
	if below(rec.WallRemainingMM, t.WallCriticalMM) {
		return types.RiskHigh
	}
	if above(rec.DepthPct, t.DepthCriticalPct) {
		return types.RiskHigh
	}

	if below(rec.ERFB31G, t.ERFMediumRisk) {
		return types.RiskMedium
	}
	if below(rec.ERFDNV, t.ERFMediumRisk) {
		return types.RiskMedium
	}
	if above(rec.DepthPct, t.DepthHighPct) {
		return types.RiskMedium
	}

	return types.RiskLow
}

func below(v *float64, limit float64) bool {
	return v != nil && *v < limit
}

func above(v *float64, limit float64) bool {
	return v != nil && *v > limit
}
