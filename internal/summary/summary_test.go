package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-insights-go/internal/risk"
	"pipeline-insights-go/internal/types"
)

func f(v float64) *float64 { return &v }

func testMeta() types.InspectionMeta {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return types.InspectionMeta{
		PipelineName: "Основной трубопровод",
		SegmentKM:    "0-15",
		DiameterMM:   530,
		Method:       "MFL",
		StartDate:    &start,
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	s := Aggregate(nil, testMeta(), risk.DefaultThresholds())

	assert.Equal(t, 0, s.Overview.TotalDefects)
	assert.Equal(t, 0, s.ByRisk[types.RiskHigh])
	assert.Equal(t, 0, s.ByRisk[types.RiskMedium])
	assert.Equal(t, 0, s.ByRisk[types.RiskLow])

	assert.Nil(t, s.Statistics.AvgDepthPct)
	assert.Nil(t, s.Statistics.MaxDepthPct)
	assert.Nil(t, s.Statistics.AvgERFB31G)
	assert.Nil(t, s.Statistics.MinERFB31G)
	assert.Nil(t, s.Statistics.AvgWallRemaining)
}

func TestAggregate(t *testing.T) {
	defects := []types.DefectRecord{
		{AnomalyType: "коррозия", RepairFlag: "ремонт обязателен", DepthPct: f(50), ERFB31G: f(0.7)},
		{AnomalyType: "коррозия", DepthPct: f(30), ERFB31G: f(0.9), WallRemainingMM: f(6)},
		{AnomalyType: "вмятина", DepthPct: f(10), WallRemainingMM: f(8)},
		{AnomalyType: "коррозия"}, // no measurements at all
	}

	s := Aggregate(defects, testMeta(), risk.DefaultThresholds())

	assert.Equal(t, 4, s.Overview.TotalDefects)
	assert.Equal(t, "2025-06-10", s.Overview.InspectionDate)
	assert.Equal(t, 530, s.Overview.DiameterMM)

	assert.Equal(t, 1, s.ByRisk[types.RiskHigh])
	assert.Equal(t, 1, s.ByRisk[types.RiskMedium])
	assert.Equal(t, 2, s.ByRisk[types.RiskLow])

	assert.Equal(t, map[string]int{"коррозия": 3, "вмятина": 1}, s.ByType)
	assert.Equal(t, map[string]int{"ремонт обязателен": 1}, s.ByRepairFlag)

	// Statistics skip missing values rather than counting them as zero.
	require.NotNil(t, s.Statistics.AvgDepthPct)
	assert.InDelta(t, 30.0, *s.Statistics.AvgDepthPct, 1e-9)
	require.NotNil(t, s.Statistics.MaxDepthPct)
	assert.InDelta(t, 50.0, *s.Statistics.MaxDepthPct, 1e-9)
	require.NotNil(t, s.Statistics.AvgERFB31G)
	assert.InDelta(t, 0.8, *s.Statistics.AvgERFB31G, 1e-9)
	require.NotNil(t, s.Statistics.MinERFB31G)
	assert.InDelta(t, 0.7, *s.Statistics.MinERFB31G, 1e-9)
	require.NotNil(t, s.Statistics.AvgWallRemaining)
	assert.InDelta(t, 7.0, *s.Statistics.AvgWallRemaining, 1e-9)

	// Derived columns are attached to every record.
	require.Len(t, s.Defects, 4)
	assert.Equal(t, types.RiskHigh, s.Defects[0].RiskClass)
	assert.Equal(t, 1, s.Defects[0].RepairPriority)
	assert.Equal(t, types.RiskMedium, s.Defects[1].RiskClass)
	assert.Equal(t, 2, s.Defects[1].RepairPriority)
	assert.Equal(t, types.RiskLow, s.Defects[3].RiskClass)
	assert.Equal(t, 3, s.Defects[3].RepairPriority)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	defects := []types.DefectRecord{{DepthPct: f(50)}}
	Aggregate(defects, testMeta(), risk.DefaultThresholds())
	assert.Empty(t, defects[0].RiskClass, "input slice records stay untouched")
}

func TestAggregateAbsentColumnYieldsNull(t *testing.T) {
	defects := []types.DefectRecord{
		{AnomalyType: "коррозия", DepthPct: f(20)},
		{AnomalyType: "коррозия", DepthPct: f(40)},
	}

	s := Aggregate(defects, testMeta(), risk.DefaultThresholds())

	require.NotNil(t, s.Statistics.AvgDepthPct)
	assert.Nil(t, s.Statistics.AvgERFB31G, "erf column absent entirely")
	assert.Nil(t, s.Statistics.MinERFB31G)
	assert.Nil(t, s.Statistics.AvgWallRemaining)
}

func TestCompareNoPrevious(t *testing.T) {
	current := Aggregate([]types.DefectRecord{{DepthPct: f(50)}}, testMeta(), risk.DefaultThresholds())

	d := Compare(current, nil)

	assert.False(t, d.HasPrevious)
	assert.Equal(t, 0, d.DefectsChange)
	assert.Equal(t, 0, d.HighRiskChange)
	assert.Zero(t, d.DefectsChangePct)
	assert.Zero(t, d.HighRiskChangePct)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		currTotal   int
		currHigh    int
		prevTotal   int
		prevHigh    int
		wantChange  int
		wantPct     float64
		wantHighChg int
		wantHighPct float64
	}{
		{"growth", 7, 2, 3, 1, 4, 133.3, 1, 100.0},
		{"decline", 3, 0, 5, 2, -2, -40.0, -2, -100.0},
		{"unchanged", 5, 1, 5, 1, 0, 0, 0, 0},
		{"zero previous yields zero pct", 5, 2, 0, 0, 5, 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := summaryWith(tt.currTotal, tt.currHigh)
			previous := summaryWith(tt.prevTotal, tt.prevHigh)

			d := Compare(current, &previous)

			assert.True(t, d.HasPrevious)
			assert.Equal(t, tt.wantChange, d.DefectsChange)
			assert.Equal(t, tt.wantHighChg, d.HighRiskChange)
			assert.InDelta(t, tt.wantPct, d.DefectsChangePct, 1e-9)
			assert.InDelta(t, tt.wantHighPct, d.HighRiskChangePct, 1e-9)
		})
	}
}

func summaryWith(total, high int) types.InspectionSummary {
	return types.InspectionSummary{
		Overview: types.Overview{TotalDefects: total},
		ByRisk:   map[types.RiskTier]int{types.RiskHigh: high},
	}
}
