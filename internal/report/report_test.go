package report

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-insights-go/internal/types"
)

func f(v float64) *float64 { return &v }

func testSummary() types.InspectionSummary {
	return types.InspectionSummary{
		Overview: types.Overview{
			TotalDefects:   12,
			InspectionDate: "2025-06-10",
		},
		ByRisk: map[types.RiskTier]int{
			types.RiskHigh:   3,
			types.RiskMedium: 4,
			types.RiskLow:    5,
		},
		ByType: map[string]int{"коррозия": 10, "вмятина": 2},
		Statistics: types.Statistics{
			AvgDepthPct: f(22.5),
			MaxDepthPct: f(48.0),
			MinERFB31G:  f(0.61),
		},
	}
}

func testMeta() types.InspectionMeta {
	return types.InspectionMeta{
		PipelineName: "Основной трубопровод",
		SegmentKM:    "0-15",
		DiameterMM:   530,
		Method:       "Магнитоскан (MFL)",
	}
}

func TestBuildContext(t *testing.T) {
	delta := &types.Delta{DefectsChange: 4, DefectsChangePct: 50.0, HasPrevious: true}

	rc := BuildContext(testSummary(), testMeta(), delta)

	assert.Equal(t, "Основной трубопровод", rc.PipelineName)
	assert.Equal(t, "2025-06-10", rc.InspectionDate)
	assert.Equal(t, 12, rc.TotalDefects)
	assert.Equal(t, 3, rc.HighRiskCount)
	assert.Equal(t, 4, rc.MediumRisk)
	assert.Equal(t, 5, rc.LowRiskCount)
	assert.True(t, rc.HasPrevious)
	require.NotNil(t, rc.Changes)
	assert.Equal(t, 4, rc.Changes.DefectsChange)
}

func TestBuildContextWithoutPrevious(t *testing.T) {
	rc := BuildContext(testSummary(), testMeta(), &types.Delta{HasPrevious: false})

	assert.False(t, rc.HasPrevious)
	assert.Nil(t, rc.Changes)
}

func TestBuildContextDefaultsDateToToday(t *testing.T) {
	s := testSummary()
	s.Overview.InspectionDate = ""

	rc := BuildContext(s, testMeta(), nil)
	assert.NotEmpty(t, rc.InspectionDate)
}

// stubGenerator records prompts and returns canned text per call.
type stubGenerator struct {
	calls []string
	fail  bool
}

func (s *stubGenerator) Generate(_ context.Context, _, userPrompt string) (string, error) {
	s.calls = append(s.calls, userPrompt)
	if s.fail {
		return "", fmt.Errorf("gateway down")
	}
	return fmt.Sprintf("текст %d", len(s.calls)), nil
}

func TestGenerateTexts(t *testing.T) {
	gen := &stubGenerator{}
	rc := BuildContext(testSummary(), testMeta(), &types.Delta{HasPrevious: true})

	texts := GenerateTexts(context.Background(), gen, rc)

	assert.Len(t, gen.calls, 4, "summary, results, recommendations, comparison")
	assert.NotEmpty(t, texts.Summary)
	assert.NotEmpty(t, texts.Results)
	assert.NotEmpty(t, texts.Comparison)
	assert.NotEmpty(t, texts.Recommendations)
	assert.NotEqual(t, noPreviousText, texts.Comparison)

	// Every prompt carries the data context so the model cannot invent numbers.
	for _, call := range gen.calls {
		assert.Contains(t, call, "КОНТЕКСТ ДАННЫХ")
		assert.Contains(t, call, `"total_defects": 12`)
	}
}

func TestGenerateTextsWithoutPrevious(t *testing.T) {
	gen := &stubGenerator{}
	rc := BuildContext(testSummary(), testMeta(), nil)

	texts := GenerateTexts(context.Background(), gen, rc)

	assert.Len(t, gen.calls, 3, "comparison section skips the LLM entirely")
	assert.Equal(t, noPreviousText, texts.Comparison)
}

func TestGenerateTextsFallsBackOnFailure(t *testing.T) {
	gen := &stubGenerator{fail: true}
	rc := BuildContext(testSummary(), testMeta(), nil)

	texts := GenerateTexts(context.Background(), gen, rc)

	assert.Contains(t, texts.Summary, "12 дефектов")
	assert.Contains(t, texts.Results, "Магнитоскан (MFL)")
	assert.NotEmpty(t, texts.Recommendations)
}

func TestFallbackTexts(t *testing.T) {
	delta := &types.Delta{
		DefectsChange:     4,
		DefectsChangePct:  50.0,
		HighRiskChange:    -1,
		HighRiskChangePct: -25.0,
		HasPrevious:       true,
	}
	rc := BuildContext(testSummary(), testMeta(), delta)

	texts := FallbackTexts(rc)

	assert.Contains(t, texts.Summary, "выявлено 12 дефектов")
	assert.Contains(t, texts.Summary, "высокий — 3")

	assert.Contains(t, texts.Results, "диаметр 530 мм")
	assert.Contains(t, texts.Results, "коррозия — 10")
	assert.True(t, strings.Index(texts.Results, "коррозия") < strings.Index(texts.Results, "вмятина"),
		"types are listed most frequent first")
	assert.Contains(t, texts.Results, "Минимальный ERF B31G: 0.61")

	assert.Contains(t, texts.Comparison, "+4 (+50.0%)")
	assert.Contains(t, texts.Comparison, "-1 (-25.0%)")

	assert.Contains(t, texts.Recommendations, "3 дефектов высокого риска")
	assert.Contains(t, texts.Recommendations, "4 дефектами среднего риска")
}

func TestGroupDefects(t *testing.T) {
	defects := []types.DefectRecord{
		{Identification: "DEF-001", AnomalyType: "коррозия", RiskClass: types.RiskHigh,
			DepthPct: f(52.0), InfraLocation: "трубопровод-байпасс"},
		{AnomalyType: "вмятина", RiskClass: types.RiskLow, InfraLocation: "трубопровод-байпасс"},
		{Identification: "DEF-003"},
	}

	groups := GroupDefects(defects)
	require.Len(t, groups, 2)

	bypass := groups["трубопровод-байпасс"]
	require.Len(t, bypass, 2)
	assert.Equal(t, "DEF-001", bypass[0].ID)
	assert.Equal(t, "52", bypass[0].Depth)
	assert.Equal(t, "High", bypass[0].Risk)
	assert.Equal(t, "DEF-2", bypass[1].ID, "a defect without identification gets its position")
	assert.Equal(t, "N/A", bypass[1].Depth)

	unknown := groups["неизвестно"]
	require.Len(t, unknown, 1)
	assert.Equal(t, "DEF-003", unknown[0].ID)
}

func TestAnswerQuestion(t *testing.T) {
	gen := &stubGenerator{}
	rc := BuildContext(testSummary(), testMeta(), nil)
	defects := []types.DefectRecord{
		{Identification: "DEF-001", RiskClass: types.RiskHigh, InfraLocation: "трубопровод-байпасс"},
	}

	answer, err := AnswerQuestion(context.Background(), gen, rc, defects,
		"Какие дефекты рядом с байпасом?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0], "Какие дефекты рядом с байпасом?")
	assert.Contains(t, gen.calls[0], `"total_defects": 12`)
	assert.Contains(t, gen.calls[0], "infrastructure_groups")
	assert.Contains(t, gen.calls[0], "трубопровод-байпасс")
}

func TestFallbackTextsNoPrevious(t *testing.T) {
	texts := FallbackTexts(BuildContext(testSummary(), testMeta(), nil))
	assert.Equal(t, noPreviousText, texts.Comparison)
}
