// Package summary reduces a classified defect set into an inspection summary
// and compares summaries across consecutive inspections.
package summary

import (
	"math"

	"pipeline-insights-go/internal/risk"
	"pipeline-insights-go/internal/types"
)

// Aggregate classifies every record, attaches the derived risk columns and
// computes the inspection summary. Total over any table: an empty defect set
// yields zero counts and null statistics.
func Aggregate(defects []types.DefectRecord, meta types.InspectionMeta, t risk.Thresholds) types.InspectionSummary {
	byRisk := map[types.RiskTier]int{
		types.RiskHigh:   0,
		types.RiskMedium: 0,
		types.RiskLow:    0,
	}
	byType := map[string]int{}
	byFlag := map[string]int{}

	classified := make([]types.DefectRecord, len(defects))
	for i, rec := range defects {
		tier := risk.Classify(rec, t)
		rec.RiskClass = tier
		rec.RepairPriority = tier.RepairPriority()
		classified[i] = rec

		byRisk[tier]++
		if rec.AnomalyType != "" {
			byType[rec.AnomalyType]++
		}
		if rec.RepairFlag != "" {
			byFlag[rec.RepairFlag]++
		}
	}

	date := ""
	if meta.StartDate != nil {
		date = meta.StartDate.Format("2006-01-02")
	}

	depth := collect(classified, func(r types.DefectRecord) *float64 { return r.DepthPct })
	erf := collect(classified, func(r types.DefectRecord) *float64 { return r.ERFB31G })
	wall := collect(classified, func(r types.DefectRecord) *float64 { return r.WallRemainingMM })

	return types.InspectionSummary{
		Overview: types.Overview{
			TotalDefects:   len(classified),
			PipelineName:   meta.PipelineName,
			SegmentKM:      meta.SegmentKM,
			DiameterMM:     meta.DiameterMM,
			Method:         meta.Method,
			InspectionDate: date,
		},
		ByRisk:       byRisk,
		ByType:       byType,
		ByRepairFlag: byFlag,
		Statistics: types.Statistics{
			AvgDepthPct:      mean(depth),
			MaxDepthPct:      max(depth),
			AvgERFB31G:       mean(erf),
			MinERFB31G:       min(erf),
			AvgWallRemaining: mean(wall),
		},
		Defects: classified,
	}
}

// Compare produces the delta between the current summary and an optional
// prior one. A zero prior value yields a 0 percentage change rather than a
// division error; percentages are rounded to one decimal.
func Compare(current types.InspectionSummary, previous *types.InspectionSummary) types.Delta {
	if previous == nil {
		return types.Delta{HasPrevious: false}
	}

	currTotal := current.Overview.TotalDefects
	prevTotal := previous.Overview.TotalDefects
	currHigh := current.ByRisk[types.RiskHigh]
	prevHigh := previous.ByRisk[types.RiskHigh]

	return types.Delta{
		DefectsChange:     currTotal - prevTotal,
		HighRiskChange:    currHigh - prevHigh,
		DefectsChangePct:  pctChange(currTotal, prevTotal),
		HighRiskChangePct: pctChange(currHigh, prevHigh),
		HasPrevious:       true,
	}
}

func pctChange(curr, prev int) float64 {
	if prev <= 0 {
		return 0
	}
	return math.Round(float64(curr-prev)/float64(prev)*1000) / 10
}

func collect(recs []types.DefectRecord, get func(types.DefectRecord) *float64) []float64 {
	var out []float64
	for _, r := range recs {
		if v := get(r); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

func max(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return &m
}

func min(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return &m
}
