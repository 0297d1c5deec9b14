package types

import "time"

// RiskTier is the derived urgency class of a defect. Higher tiers sort first.
type RiskTier string

const (
	RiskHigh   RiskTier = "High"
	RiskMedium RiskTier = "Medium"
	RiskLow    RiskTier = "Low"
)

// Rank orders tiers for sorting: High before Medium before Low.
func (r RiskTier) Rank() int {
	switch r {
	case RiskHigh:
		return 0
	case RiskMedium:
		return 1
	default:
		return 2
	}
}

// RepairPriority mirrors the tier as a repair queue position (1 is most urgent).
func (r RiskTier) RepairPriority() int {
	switch r {
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	default:
		return 3
	}
}

// DefectRecord is one normalized row of an MFL inspection sheet.
// Numeric measurements are nil when the source cell was empty or unparsable;
// a nil value never participates in classification or statistics.
type DefectRecord struct {
	SectionID       string `json:"section_id,omitempty"`
	Identification  string `json:"identification,omitempty"`
	AnomalyType     string `json:"anomaly_type,omitempty"`
	Comment         string `json:"comment,omitempty"`
	Orientation     string `json:"orientation,omitempty"`
	SurfaceLocation string `json:"surface_location,omitempty"`
	LocalClass      string `json:"local_class,omitempty"`
	RepairFlag      string `json:"repair_flag,omitempty"`

	// Extra carries cells of columns no mapping matched, keyed by their
	// original header. Unmapped data is preserved, never dropped.
	Extra map[string]string `json:"extra,omitempty"`

	SectionLengthM    *float64 `json:"section_length_m,omitempty"`
	WallThicknessMM   *float64 `json:"wall_thickness_mm,omitempty"`
	DistanceToWeldM   *float64 `json:"distance_to_weld_m,omitempty"`
	MeasuredDistanceM *float64 `json:"measured_distance_m,omitempty"`
	DefectLengthMM    *float64 `json:"defect_length_mm,omitempty"`
	DefectWidthMM     *float64 `json:"defect_width_mm,omitempty"`
	DepthPct          *float64 `json:"depth_pct,omitempty"`
	DepthAvgPct       *float64 `json:"depth_avg_pct,omitempty"`
	DepthAbsMM        *float64 `json:"depth_abs_mm,omitempty"`
	WallRemainingMM   *float64 `json:"wall_thickness_remaining_mm,omitempty"`
	DepthResultPct    *float64 `json:"depth_result_pct,omitempty"`
	PressureReductPct *float64 `json:"pressure_reduction_pct,omitempty"`
	ERFB31G           *float64 `json:"erf_b31g,omitempty"`
	ERFCase1          *float64 `json:"erf_case1,omitempty"`
	ERFCase2          *float64 `json:"erf_case2,omitempty"`
	ERFDNV            *float64 `json:"erf_dnv,omitempty"`

	// Derived by the aggregator, never read from the sheet.
	RiskClass      RiskTier `json:"risk_class,omitempty"`
	RepairPriority int      `json:"repair_priority,omitempty"`

	// Assigned by the scheme module for overlay rendering.
	SchemeX         int     `json:"scheme_x,omitempty"`
	SchemeY         int     `json:"scheme_y,omitempty"`
	InfraLocation   string  `json:"infrastructure_location,omitempty"`
	InfraDistancePx float64 `json:"distance_to_infrastructure,omitempty"`
}

// InspectionMeta describes the inspection run itself. Supplied by the CSV
// export header or by configured defaults, never computed.
type InspectionMeta struct {
	PipelineName string     `json:"pipeline_name"`
	SegmentKM    string     `json:"segment_km"`
	DiameterMM   int        `json:"diameter_mm"`
	Method       string     `json:"method"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// CoordPoint is one georeferenced object sniffed out of the MFL CSV export.
type CoordPoint struct {
	RawSectionID string   `json:"raw_section_id,omitempty"`
	ChainageKM   *float64 `json:"chainage_km,omitempty"`
	RawType      string   `json:"raw_type,omitempty"`
	RawLocation  string   `json:"raw_location,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	ElevationM   *float64 `json:"elevation_m,omitempty"`
}

// Float returns a pointer to v. Handy for building records in one literal.
func Float(v float64) *float64 { return &v }
