package types

// Overview carries the headline numbers and the inspection metadata echoed
// back for display.
type Overview struct {
	TotalDefects   int    `json:"total_defects"`
	PipelineName   string `json:"pipeline_name"`
	SegmentKM      string `json:"segment_km"`
	DiameterMM     int    `json:"diameter_mm"`
	Method         string `json:"method"`
	InspectionDate string `json:"inspection_date"`
}

// Statistics are computed over non-missing values only. A nil field means the
// source column was absent from the sheet, which is different from zero.
type Statistics struct {
	AvgDepthPct      *float64 `json:"avg_depth_pct"`
	MaxDepthPct      *float64 `json:"max_depth_pct"`
	AvgERFB31G       *float64 `json:"avg_erf_b31g"`
	MinERFB31G       *float64 `json:"min_erf_b31g"`
	AvgWallRemaining *float64 `json:"avg_wall_remaining_mm"`
}

// InspectionSummary is the full aggregate over one inspection's defect set.
// ByRisk always contains all three tiers, zero-filled when empty, so that
// downstream consumers can read well-known keys without existence checks.
type InspectionSummary struct {
	Overview     Overview         `json:"overview"`
	ByRisk       map[RiskTier]int `json:"by_risk"`
	ByType       map[string]int   `json:"by_type"`
	ByRepairFlag map[string]int   `json:"by_repair_flag"`
	Statistics   Statistics       `json:"statistics"`

	// The classified defect table, for schematic rendering and display.
	Defects []DefectRecord `json:"-"`
}

// Delta compares two consecutive inspection summaries. Percentage changes are
// rounded to one decimal and reported as 0 when the prior value was zero.
type Delta struct {
	DefectsChange     int     `json:"defects_change"`
	HighRiskChange    int     `json:"high_risk_change"`
	DefectsChangePct  float64 `json:"defects_change_pct"`
	HighRiskChangePct float64 `json:"high_risk_change_pct"`
	HasPrevious       bool    `json:"has_previous"`
}
