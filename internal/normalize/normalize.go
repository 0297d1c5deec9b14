// Package normalize maps the free-text bilingual headers of an MFL anomaly
// sheet onto a canonical field schema and coerces locale-formatted numbers.
package normalize

import (
	"strconv"
	"strings"

	"pipeline-insights-go/internal/types"
)

// Mapping is one (header substring, canonical field) pair. Matching is
// case-insensitive. The mapping list is ordered and the first entry whose
// substring occurs in a header wins, so more specific patterns must be listed
// before their prefixes (e.g. "средняя глубина" before "глубина").
type Mapping struct {
	Match string
	Field string
}

// DefaultMappings mirrors the column naming of the inspection vendor's Excel
// export. Order matters: the first match wins.
var DefaultMappings = []Mapping{
	{"№ секции", "section_id"},
	{"длина секции [м]", "section_length_m"},
	{"прив.тс [мм]", "wall_thickness_mm"},
	{"расст. до шва против теч. [м]", "distance_to_weld_m"},
	{"измер. расст. [м]", "measured_distance_m"},
	{"тип аномалии", "anomaly_type"},
	{"идентификация", "identification"},
	{"комментарий", "comment"},
	{"ориентация", "orientation"},
	{"средняя глубина [%]", "depth_avg_pct"},
	{"абс. глубина [мм]", "depth_abs_mm"},
	{"рез. глубина [%]", "depth_result_pct"},
	{"глубина [%]", "depth_pct"},
	{"длина [мм]", "defect_length_mm"},
	{"ширина [мм]", "defect_width_mm"},
	{"остат. тс [мм]", "wall_thickness_remaining_mm"},
	{"уменьш. вд [%]", "pressure_reduction_pct"},
	{"erf b31g", "erf_b31g"},
	{"erf (случай 1)", "erf_case1"},
	{"erf (случай 2)", "erf_case2"},
	{"erf dnv", "erf_dnv"},
	{"локация на поверхн.", "surface_location"},
	{"класс лок.", "local_class"},
	{"ремонт", "repair_flag"},
}

// CanonicalField resolves a raw header to its canonical field name, scanning
// the mappings in declared order. Returns the original header untouched when
// nothing matches, so unmapped columns pass through.
func CanonicalField(header string, mappings []Mapping) string {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, m := range mappings {
		if strings.Contains(h, strings.ToLower(m.Match)) {
			return m.Field
		}
	}
	return header
}

// CleanNumeric coerces a raw cell into a float. Empty and unparsable tokens
// become nil, never zero; a comma decimal separator is accepted.
func CleanNumeric(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Records converts a header row plus data rows into defect records. Cells are
// assigned by canonical field; cells of unmapped columns are kept verbatim
// under their original header. Rows with no content in any column are dropped.
// The input rows are not modified.
func Records(header []string, rows [][]string, mappings []Mapping) []types.DefectRecord {
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = CanonicalField(h, mappings)
	}

	var out []types.DefectRecord
	for _, row := range rows {
		var rec types.DefectRecord
		empty := true
		for i, field := range fields {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if assign(&rec, field, cell) {
				empty = false
			}
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// assign writes one cell into its canonical field. Reports whether the record
// gained a value: a non-numeric token in a numeric field does not count.
func assign(rec *types.DefectRecord, field, cell string) bool {
	switch field {
	case "section_id":
		rec.SectionID = cell
	case "identification":
		rec.Identification = cell
	case "anomaly_type":
		rec.AnomalyType = cell
	case "comment":
		rec.Comment = cell
	case "orientation":
		rec.Orientation = cell
	case "surface_location":
		rec.SurfaceLocation = cell
	case "local_class":
		rec.LocalClass = cell
	case "repair_flag":
		rec.RepairFlag = cell
	case "section_length_m":
		rec.SectionLengthM = CleanNumeric(cell)
		return rec.SectionLengthM != nil
	case "wall_thickness_mm":
		rec.WallThicknessMM = CleanNumeric(cell)
		return rec.WallThicknessMM != nil
	case "distance_to_weld_m":
		rec.DistanceToWeldM = CleanNumeric(cell)
		return rec.DistanceToWeldM != nil
	case "measured_distance_m":
		rec.MeasuredDistanceM = CleanNumeric(cell)
		return rec.MeasuredDistanceM != nil
	case "defect_length_mm":
		rec.DefectLengthMM = CleanNumeric(cell)
		return rec.DefectLengthMM != nil
	case "defect_width_mm":
		rec.DefectWidthMM = CleanNumeric(cell)
		return rec.DefectWidthMM != nil
	case "depth_pct":
		rec.DepthPct = CleanNumeric(cell)
		return rec.DepthPct != nil
	case "depth_avg_pct":
		rec.DepthAvgPct = CleanNumeric(cell)
		return rec.DepthAvgPct != nil
	case "depth_abs_mm":
		rec.DepthAbsMM = CleanNumeric(cell)
		return rec.DepthAbsMM != nil
	case "wall_thickness_remaining_mm":
		rec.WallRemainingMM = CleanNumeric(cell)
		return rec.WallRemainingMM != nil
	case "depth_result_pct":
		rec.DepthResultPct = CleanNumeric(cell)
		return rec.DepthResultPct != nil
	case "pressure_reduction_pct":
		rec.PressureReductPct = CleanNumeric(cell)
		return rec.PressureReductPct != nil
	case "erf_b31g":
		rec.ERFB31G = CleanNumeric(cell)
		return rec.ERFB31G != nil
	case "erf_case1":
		rec.ERFCase1 = CleanNumeric(cell)
		return rec.ERFCase1 != nil
	case "erf_case2":
		rec.ERFCase2 = CleanNumeric(cell)
		return rec.ERFCase2 != nil
	case "erf_dnv":
		rec.ERFDNV = CleanNumeric(cell)
		return rec.ERFDNV != nil
	default:
		// Unmapped column: carried verbatim under the original header.
		if field == "" {
			return false
		}
		if rec.Extra == nil {
			rec.Extra = map[string]string{}
		}
		rec.Extra[field] = cell
	}
	return true
}
