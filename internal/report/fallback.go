package report

import (
	"fmt"
	"sort"
	"strings"
)

// FallbackTexts builds plain deterministic section texts straight from the
// aggregates. Used when the LLM gateway is unreachable or not configured.
func FallbackTexts(rc Context) Texts {
	return Texts{
		Summary:         fallbackSummary(rc),
		Results:         fallbackResults(rc),
		Comparison:      fallbackComparison(rc),
		Recommendations: fallbackRecommendations(rc),
	}
}

func fallbackSummary(rc Context) string {
	return fmt.Sprintf(
		"По результатам обследования участка %s км трубопровода «%s» выявлено %d дефектов. "+
			"Распределение по классам риска: высокий — %d, средний — %d, низкий — %d.",
		rc.SegmentKM, rc.PipelineName, rc.TotalDefects,
		rc.HighRiskCount, rc.MediumRisk, rc.LowRiskCount)
}

func fallbackResults(rc Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Обследование выполнено методом %s, участок %s км, диаметр %d мм.",
		rc.Method, rc.SegmentKM, rc.DiameterMM)

	if len(rc.DefectTypes) > 0 {
		type tc struct {
			name  string
			count int
		}
		var arr []tc
		for name, count := range rc.DefectTypes {
			arr = append(arr, tc{name, count})
		}
		sort.Slice(arr, func(i, j int) bool {
			if arr[i].count != arr[j].count {
				return arr[i].count > arr[j].count
			}
			return arr[i].name < arr[j].name
		})
		parts := make([]string, len(arr))
		for i, t := range arr {
			parts[i] = fmt.Sprintf("%s — %d", t.name, t.count)
		}
		fmt.Fprintf(&b, " Типы аномалий: %s.", strings.Join(parts, ", "))
	}

	if rc.Statistics.AvgDepthPct != nil && rc.Statistics.MaxDepthPct != nil {
		fmt.Fprintf(&b, " Средняя глубина дефектов %.1f%%, максимальная %.1f%%.",
			*rc.Statistics.AvgDepthPct, *rc.Statistics.MaxDepthPct)
	}
	if rc.Statistics.MinERFB31G != nil {
		fmt.Fprintf(&b, " Минимальный ERF B31G: %.2f.", *rc.Statistics.MinERFB31G)
	}
	return b.String()
}

func fallbackComparison(rc Context) string {
	if !rc.HasPrevious || rc.Changes == nil {
		return noPreviousText
	}
	d := rc.Changes
	return fmt.Sprintf(
		"Относительно предыдущей инспекции общее количество дефектов изменилось на %+d (%+.1f%%), "+
			"количество дефектов высокого риска — на %+d (%+.1f%%).",
		d.DefectsChange, d.DefectsChangePct, d.HighRiskChange, d.HighRiskChangePct)
}

func fallbackRecommendations(rc Context) string {
	var lines []string
	if rc.HighRiskCount > 0 {
		lines = append(lines, fmt.Sprintf(
			"1. Выполнить первоочередной ремонт %d дефектов высокого риска.", rc.HighRiskCount))
	} else {
		lines = append(lines, "1. Дефекты высокого риска не выявлены, первоочередной ремонт не требуется.")
	}
	if rc.MediumRisk > 0 {
		lines = append(lines, fmt.Sprintf(
			"2. Установить наблюдение за %d дефектами среднего риска.", rc.MediumRisk))
	} else {
		lines = append(lines, "2. Дефекты среднего риска не выявлены.")
	}
	lines = append(lines, "3. Провести повторное обследование участка в плановые сроки.")
	return strings.Join(lines, "\n")
}
