// Package ingest reads the two upload formats: the vendor's Excel anomaly
// workbook and the ';'-separated MFL survey CSV.
package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pipeline-insights-go/internal/logger"
	"pipeline-insights-go/internal/normalize"
	"pipeline-insights-go/internal/types"
)

// LoadDefects reads the anomaly sheet from an uploaded workbook and returns
// normalized defect records. Falls back to the first sheet when the named
// sheet is missing, since some exports rename it.
func LoadDefects(r io.Reader, sheetName string) ([]types.DefectRecord, error) {
	log := logger.New().WithComponent("ingest.excel")

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	sheet := sheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		log.WithField("sheet", sheetName).Warn("anomaly sheet not found, using first sheet")
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	records := normalize.Records(rows[0], rows[1:], normalize.DefaultMappings)
	log.WithField("sheet", sheet).WithField("defects", len(records)).Info("workbook loaded")
	return records, nil
}
