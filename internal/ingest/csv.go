package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pipeline-insights-go/internal/normalize"
	"pipeline-insights-go/internal/types"
)

// Latitude/longitude/elevation windows for the surveyed region. The CSV
// export carries coordinates in unlabeled trailing fields, so values are
// recognized by range.
const (
	latMin, latMax   = 40.0, 60.0
	lonMin, lonMax   = 50.0, 70.0
	elevMin, elevMax = 200.0, 400.0
)

var typeKeywords = []string{"коррозия", "шов", "металл", "объект"}
var locationCodes = []string{"ВНШ", "ВН", "НН", "ННШ"}

// ParseSurveyCSV reads the ';'-separated MFL survey export. The first line is
// run metadata, the rest are object rows positioned by the field heuristics
// above. Lines that yield no coordinates are skipped quietly.
func ParseSurveyCSV(r io.Reader) (types.InspectionMeta, []types.CoordPoint, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return types.InspectionMeta{}, nil, fmt.Errorf("empty survey file")
	}
	meta := parseMetaLine(scanner.Text())

	var points []types.CoordPoint
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) < 20 {
			continue
		}
		if p, ok := parseObjectRow(fields); ok {
			points = append(points, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return meta, points, fmt.Errorf("read survey: %w", err)
	}
	return meta, points, nil
}

// parseMetaLine extracts the run metadata from the first CSV line. Fields are
// positional: name, diameter, segment, then method and dd.mm.yyyy dates.
func parseMetaLine(line string) types.InspectionMeta {
	fields := strings.Split(strings.TrimSpace(line), ";")

	meta := types.InspectionMeta{
		PipelineName: "Unknown",
		SegmentKM:    "Unknown",
		Method:       "MFL",
	}
	if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
		meta.PipelineName = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		if d, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil {
			meta.DiameterMM = d
		}
	}
	if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
		meta.SegmentKM = strings.TrimSpace(fields[3])
	}
	if len(fields) > 6 && strings.TrimSpace(fields[6]) != "" {
		meta.Method = strings.TrimSpace(fields[6])
	}
	if len(fields) > 7 {
		meta.StartDate = parseDate(fields[7])
	}
	if len(fields) > 8 {
		meta.EndDate = parseDate(fields[8])
	}
	return meta
}

func parseDate(s string) *time.Time {
	t, err := time.Parse("02.01.2006", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

func parseObjectRow(fields []string) (types.CoordPoint, bool) {
	var p types.CoordPoint
	if len(fields) > 1 {
		p.RawSectionID = strings.TrimSpace(fields[1])
	}

	// Coordinates live near the end of the row; scan backwards and
	// recognize each number by its plausible range.
	var lat, lon, elev *float64
	stop := len(fields) - 10
	if stop < 0 {
		stop = 0
	}
	for i := len(fields) - 1; i > stop; i-- {
		v := normalize.CleanNumeric(fields[i])
		if v == nil {
			continue
		}
		switch {
		case lat == nil && *v >= latMin && *v <= latMax:
			lat = v
		case lon == nil && *v >= lonMin && *v <= lonMax:
			lon = v
		case elev == nil && *v >= elevMin && *v <= elevMax:
			elev = v
		}
	}
	if lat == nil || lon == nil {
		return p, false
	}
	p.Latitude = *lat
	p.Longitude = *lon
	p.ElevationM = elev

	// Chainage is the first numeric field after the section id.
	for i := 2; i < 7 && i < len(fields); i++ {
		if v := normalize.CleanNumeric(fields[i]); v != nil {
			p.ChainageKM = v
			break
		}
	}

	// Object type is a mid-row text field naming the anomaly family.
	for i := 8; i < 15 && i < len(fields); i++ {
		text := strings.ToLower(strings.TrimSpace(fields[i]))
		if text == "" || normalize.CleanNumeric(text) != nil {
			continue
		}
		for _, kw := range typeKeywords {
			if strings.Contains(text, kw) {
				p.RawType = strings.TrimSpace(fields[i])
				break
			}
		}
		if p.RawType != "" {
			break
		}
	}

	// Surface location is a short alphabetic code further right.
	for i := 12; i < 18 && i < len(fields); i++ {
		text := strings.ToUpper(strings.TrimSpace(fields[i]))
		if text == "" || len([]rune(text)) > 5 {
			continue
		}
		for _, code := range locationCodes {
			if strings.Contains(text, code) {
				p.RawLocation = text
				break
			}
		}
		if p.RawLocation != "" {
			break
		}
	}

	return p, true
}
