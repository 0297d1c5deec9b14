package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/google/uuid"
)

// RenderDocx writes the final Word report: title, metadata table, the four
// narrative sections, a statistics bullet list and the scheme image.
// schemePNG may be nil when no scheme was rendered.
func RenderDocx(rc Context, texts Texts, schemePNG []byte, w io.Writer) error {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText("Заключительный отчёт об обследовании трубопровода").Size("32").Bold()

	sub := doc.AddParagraph().Justification("center")
	sub.AddText(fmt.Sprintf("%s, участок %s км", rc.PipelineName, rc.SegmentKM)).Size("28")

	doc.AddParagraph()

	reportID := fmt.Sprintf("REP-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
	metadata := [][2]string{
		{"Заказчик:", rc.Customer},
		{"Трубопровод:", rc.PipelineName},
		{"Участок:", fmt.Sprintf("%s км", rc.SegmentKM)},
		{"Диаметр:", fmt.Sprintf("%d мм", rc.DiameterMM)},
		{"Метод обследования:", rc.Method},
		{"ID отчёта:", reportID},
		{"Дата:", rc.InspectionDate},
	}
	table := doc.AddTable(len(metadata), 2, 9000, nil)
	for i, row := range metadata {
		cells := table.TableRows[i].TableCells
		cells[0].AddParagraph().AddText(row[0]).Bold()
		cells[1].AddParagraph().AddText(row[1])
	}

	doc.AddParagraph()

	addSection(doc, "1. Краткое заключение", texts.Summary)
	addSection(doc, "2. Результаты обследования", texts.Results)

	doc.AddParagraph().AddText("Сводная статистика:").Size("26").Bold()
	for _, stat := range []string{
		fmt.Sprintf("Всего обнаружено дефектов: %d", rc.TotalDefects),
		fmt.Sprintf("Высокий риск: %d", rc.HighRiskCount),
		fmt.Sprintf("Средний риск: %d", rc.MediumRisk),
		fmt.Sprintf("Низкий риск: %d", rc.LowRiskCount),
	} {
		doc.AddParagraph().AddText("• " + stat)
	}

	addSection(doc, "3. Динамика изменений", texts.Comparison)
	addSection(doc, "4. Рекомендации", texts.Recommendations)

	if len(schemePNG) > 0 {
		doc.AddParagraph()
		p := doc.AddParagraph().Justification("center")
		if _, err := p.AddInlineDrawing(schemePNG); err != nil {
			return fmt.Errorf("embed scheme image: %w", err)
		}
		caption := doc.AddParagraph().Justification("center")
		caption.AddText("Схема трубопровода с отмеченными дефектами").Size("20")
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func addSection(doc *docx.Docx, heading, body string) {
	doc.AddParagraph().AddText(heading).Size("28").Bold()
	doc.AddParagraph().AddText(body)
}
