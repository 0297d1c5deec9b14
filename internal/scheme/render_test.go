package scheme

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-insights-go/internal/types"
)

func writeBaseScheme(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(t.TempDir(), "scheme.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestRender(t *testing.T) {
	base := writeBaseScheme(t, 1200, 800)
	rd := &Renderer{BasePath: base, Objects: DefaultInfrastructure}

	defects := []types.DefectRecord{
		{Identification: "DEF-001", SchemeX: 200, SchemeY: 200, RiskClass: types.RiskHigh},
		{Identification: "DEF-002", SchemeX: 700, SchemeY: 500, RiskClass: types.RiskLow},
		{SchemeX: 900, SchemeY: 300}, // no id, no class: gray dot
	}

	var buf bytes.Buffer
	require.NoError(t, rd.Render(defects, &buf))

	out, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1200, out.Bounds().Dx())
	assert.Equal(t, 800, out.Bounds().Dy())

	// The High dot center must come out red.
	r, g, b, _ := out.At(200, 200).RGBA()
	assert.Greater(t, r, g)
	assert.Greater(t, r, b)
}

func TestRenderMissingBase(t *testing.T) {
	rd := &Renderer{BasePath: "does-not-exist.png", Objects: DefaultInfrastructure}

	var buf bytes.Buffer
	err := rd.Render(nil, &buf)
	assert.Error(t, err)
}
