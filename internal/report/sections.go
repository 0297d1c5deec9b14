package report

import (
	"context"
	"encoding/json"
	"fmt"

	"pipeline-insights-go/internal/llm"
	"pipeline-insights-go/internal/logger"
)

const systemPrompt = `Ты — инженерный ассистент по анализу состояния трубопроводов.

КРИТИЧЕСКИ ВАЖНО:
- Ты НЕ придумываешь никакие цифры и факты
- Ты опираешься ТОЛЬКО на данные из предоставленного контекста
- Если информации нет в контексте — прямо говоришь об этом
- Ты объясняешь уже посчитанные результаты, а не делаешь собственные расчёты

Стиль ответа:
- Технический, но понятный
- Конкретный, без воды и общих фраз
- На русском языке
- Без вводных фраз, сразу к делу

Формат:
- Ответ должен быть готов для вставки в документ Word
- НЕ используй markdown заголовки и жирный текст
- Только обычный текст с абзацами
- Цифры и факты ТОЛЬКО из контекста
- Писать в безличной форме, 2-4 абзаца`

const summaryPrompt = `Сформулируй краткое заключение (2-3 абзаца) по результатам обследования трубопровода.
Включи:
- Общее количество обнаруженных дефектов
- Распределение по классам риска
- Основные выводы о состоянии трубопровода`

const resultsPrompt = `Опиши результаты обследования (3-4 абзаца).
Включи:
- Метод обследования и охваченный участок
- Детализацию по типам обнаруженных аномалий
- Статистику по глубине дефектов и ERF
- Анализ критичных дефектов высокого риска`

const comparisonPrompt = `Опиши изменения относительно предыдущей инспекции (2-3 абзаца).
Включи:
- Изменение общего количества дефектов
- Динамику по классам риска
- Общую тенденцию (улучшение/ухудшение состояния)`

const recommendationsPrompt = `Сформулируй рекомендации по ремонту и дальнейшему мониторингу (3-4 пункта).
Включи:
- Приоритетные ремонтные работы для дефектов высокого риска
- Рекомендации по наблюдению за дефектами среднего риска
- Предложения по периодичности следующих обследований`

// noPreviousText stands in for the comparison section when there is no prior
// inspection to compare against.
const noPreviousText = "Данные предыдущей инспекции отсутствуют."

// GenerateTexts drafts the four narrative sections. Each section failure
// falls back to the deterministic text so a gateway outage never blocks the
// report download.
func GenerateTexts(ctx context.Context, gen llm.Generator, rc Context) Texts {
	log := logger.New().WithComponent("report.sections")

	draft := func(name, prompt, fallback string) string {
		text, err := generateSection(ctx, gen, prompt, rc)
		if err != nil {
			log.WithField("section", name).WithField("error", err.Error()).
				Warn("section generation failed, using fallback")
			return fallback
		}
		return text
	}

	fb := FallbackTexts(rc)
	texts := Texts{
		Summary:         draft("summary", summaryPrompt, fb.Summary),
		Results:         draft("results", resultsPrompt, fb.Results),
		Comparison:      noPreviousText,
		Recommendations: draft("recommendations", recommendationsPrompt, fb.Recommendations),
	}
	if rc.HasPrevious {
		texts.Comparison = draft("comparison", comparisonPrompt, fb.Comparison)
	}
	return texts
}

func generateSection(ctx context.Context, gen llm.Generator, prompt string, rc Context) (string, error) {
	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}
	user := fmt.Sprintf("ЗАДАЧА:\n%s\n\nКОНТЕКСТ ДАННЫХ:\n```json\n%s\n```", prompt, data)
	return gen.Generate(ctx, systemPrompt, user)
}
