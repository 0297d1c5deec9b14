// Package explain drafts per-defect narratives: whether a defect is tied to a
// nearby infrastructure object and what its measurements say.
package explain

import (
	"context"
	"encoding/json"
	"fmt"

	"pipeline-insights-go/internal/llm"
	"pipeline-insights-go/internal/types"
)

const locationSystemPrompt = `Ты — эксперт по диагностике трубопроводов.

Твоя задача:
1. Определить, связан ли дефект с указанным объектом инфраструктуры
2. Объяснить вероятные причины дефекта
3. Дать краткую оценку (2-3 предложения)

ВАЖНО:
- Используй только данные из контекста
- Будь конкретным и технически точным
- Не придумывай информацию
- Опирайся на параметры дефекта (глубина, ERF, тип)`

const fullSystemPrompt = `Ты — инженерный ассистент по анализу дефектов трубопроводов.

Задача: дать краткое, но полное объяснение дефекта.

Структура ответа:
1. Тип и локация дефекта
2. Оценка опасности (на основе ERF, глубины, остаточной толщины)
3. Вероятные причины
4. Рекомендации

Стиль: технический, конкретный, 3-4 абзаца.`

// ExplainLocation asks whether the defect is associated with the
// infrastructure object it was classified against.
func ExplainLocation(ctx context.Context, gen llm.Generator, rec types.DefectRecord) (string, error) {
	location := rec.InfraLocation
	if location == "" {
		location = "неизвестно"
	}

	prompt := fmt.Sprintf(`Проанализируй дефект и определи его связь с объектом инфраструктуры.

ДЕФЕКТ НАХОДИТСЯ РЯДОМ С: %s

Ответь на вопросы:
1. Связан ли этот дефект с объектом "%s"? (да/нет)
2. Какие характерные причины дефектов возникают в таких местах?
3. Что показывают параметры этого конкретного дефекта?

Формат ответа:
- Первая строка: СВЯЗЬ: Да/Нет
- Затем 2-3 предложения с объяснением`, location, location)

	return generate(ctx, gen, locationSystemPrompt, prompt, rec)
}

// ExplainDefect drafts the full structured explanation of one defect.
func ExplainDefect(ctx context.Context, gen llm.Generator, rec types.DefectRecord) (string, error) {
	return generate(ctx, gen, fullSystemPrompt, "Проанализируй дефект и дай полное объяснение.", rec)
}

func generate(ctx context.Context, gen llm.Generator, system, prompt string, rec types.DefectRecord) (string, error) {
	data, err := json.MarshalIndent(defectContext(rec), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal defect context: %w", err)
	}
	user := fmt.Sprintf("%s\n\nКОНТЕКСТ ДАННЫХ:\n```json\n%s\n```", prompt, data)
	return gen.Generate(ctx, system, user)
}

// defectContext flattens the record into the fields the prompts reference,
// spelling out missing measurements so the model cannot invent them.
func defectContext(rec types.DefectRecord) map[string]string {
	const missing = "нет данных"

	num := func(v *float64) string {
		if v == nil {
			return missing
		}
		return fmt.Sprintf("%g", *v)
	}
	str := func(s string) string {
		if s == "" {
			return missing
		}
		return s
	}

	return map[string]string{
		"identification":              str(rec.Identification),
		"anomaly_type":                str(rec.AnomalyType),
		"depth_pct":                   num(rec.DepthPct),
		"depth_avg_pct":               num(rec.DepthAvgPct),
		"erf_b31g":                    num(rec.ERFB31G),
		"erf_dnv":                     num(rec.ERFDNV),
		"wall_thickness_remaining_mm": num(rec.WallRemainingMM),
		"surface_location":            str(rec.SurfaceLocation),
		"orientation":                 str(rec.Orientation),
		"risk_class":                  str(string(rec.RiskClass)),
		"repair_flag":                 str(rec.RepairFlag),
		"infrastructure_location":     str(rec.InfraLocation),
	}
}
