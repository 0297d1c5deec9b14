package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metaLine = "1;Магистральный нефтепровод;530;12-27;x;x;Магнитоскан (MFL);15.05.2025;20.05.2025"

// objectRow builds a plausible survey row: 20+ ';' fields with the type text,
// location code and trailing coordinates in their usual positions.
func objectRow(lat, lon, elev string) string {
	fields := make([]string, 24)
	fields[1] = "SEC-42"
	fields[3] = "4,5"
	fields[10] = "внешняя коррозия"
	fields[14] = "ВНШ"
	fields[20] = elev
	fields[21] = lat
	fields[22] = lon
	return strings.Join(fields, ";")
}

func TestParseSurveyCSVMeta(t *testing.T) {
	meta, points, err := ParseSurveyCSV(strings.NewReader(metaLine + "\n"))
	require.NoError(t, err)
	assert.Empty(t, points)

	assert.Equal(t, "Магистральный нефтепровод", meta.PipelineName)
	assert.Equal(t, 530, meta.DiameterMM)
	assert.Equal(t, "12-27", meta.SegmentKM)
	assert.Equal(t, "Магнитоскан (MFL)", meta.Method)
	require.NotNil(t, meta.StartDate)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), *meta.StartDate)
	require.NotNil(t, meta.EndDate)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), *meta.EndDate)
}

func TestParseSurveyCSVMetaDefaults(t *testing.T) {
	meta, _, err := ParseSurveyCSV(strings.NewReader(";;;\n"))
	require.NoError(t, err)

	assert.Equal(t, "Unknown", meta.PipelineName)
	assert.Equal(t, "Unknown", meta.SegmentKM)
	assert.Equal(t, "MFL", meta.Method)
	assert.Zero(t, meta.DiameterMM)
	assert.Nil(t, meta.StartDate)
}

func TestParseSurveyCSVObjects(t *testing.T) {
	body := metaLine + "\n" +
		objectRow("51,2345", "63,9876", "245,0") + "\n" +
		"short;row\n" + // under the minimum field count, skipped
		objectRow("", "63,5", "") + "\n" // no latitude, skipped

	meta, points, err := ParseSurveyCSV(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 530, meta.DiameterMM)

	require.Len(t, points, 1)
	p := points[0]
	assert.Equal(t, "SEC-42", p.RawSectionID)
	assert.InDelta(t, 51.2345, p.Latitude, 1e-9)
	assert.InDelta(t, 63.9876, p.Longitude, 1e-9)
	require.NotNil(t, p.ElevationM)
	assert.InDelta(t, 245.0, *p.ElevationM, 1e-9)
	require.NotNil(t, p.ChainageKM)
	assert.InDelta(t, 4.5, *p.ChainageKM, 1e-9)
	assert.Equal(t, "внешняя коррозия", p.RawType)
	assert.Equal(t, "ВНШ", p.RawLocation)
}

func TestParseSurveyCSVEmpty(t *testing.T) {
	_, _, err := ParseSurveyCSV(strings.NewReader(""))
	assert.Error(t, err)
}
