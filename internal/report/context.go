// Package report drafts the narrative sections of the inspection report and
// renders the final Word document.
package report

import (
	"time"

	"pipeline-insights-go/internal/types"
)

// Context is the data handed to the LLM and the document renderer. Keys match
// what the report template expects.
type Context struct {
	Customer       string           `json:"customer"`
	PipelineName   string           `json:"pipeline_name"`
	SegmentKM      string           `json:"segment_km"`
	DiameterMM     int              `json:"diameter_mm"`
	Method         string           `json:"method"`
	InspectionDate string           `json:"inspection_date"`
	TotalDefects   int              `json:"total_defects"`
	HighRiskCount  int              `json:"high_risk_count"`
	MediumRisk     int              `json:"medium_risk_count"`
	LowRiskCount   int              `json:"low_risk_count"`
	DefectTypes    map[string]int   `json:"defect_types"`
	Statistics     types.Statistics `json:"statistics"`
	HasPrevious    bool             `json:"has_previous_inspection"`
	Changes        *types.Delta     `json:"changes,omitempty"`
}

// Texts are the four LLM-drafted narrative sections.
type Texts struct {
	Summary         string `json:"summary"`
	Results         string `json:"results"`
	Comparison      string `json:"comparison"`
	Recommendations string `json:"recommendations"`
}

// BuildContext assembles the report context from the aggregates.
func BuildContext(current types.InspectionSummary, meta types.InspectionMeta, delta *types.Delta) Context {
	date := current.Overview.InspectionDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	ctx := Context{
		Customer:       "Заказчик (не указан)",
		PipelineName:   meta.PipelineName,
		SegmentKM:      meta.SegmentKM,
		DiameterMM:     meta.DiameterMM,
		Method:         meta.Method,
		InspectionDate: date,
		TotalDefects:   current.Overview.TotalDefects,
		HighRiskCount:  current.ByRisk[types.RiskHigh],
		MediumRisk:     current.ByRisk[types.RiskMedium],
		LowRiskCount:   current.ByRisk[types.RiskLow],
		DefectTypes:    current.ByType,
		Statistics:     current.Statistics,
	}
	if delta != nil && delta.HasPrevious {
		ctx.HasPrevious = true
		ctx.Changes = delta
	}
	return ctx
}
