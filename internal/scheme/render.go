package scheme

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"pipeline-insights-go/internal/types"
)

var riskColors = map[types.RiskTier]color.RGBA{
	types.RiskHigh:   {R: 255, G: 0, B: 0, A: 255},
	types.RiskMedium: {R: 255, G: 165, B: 0, A: 255},
	types.RiskLow:    {R: 0, G: 255, B: 0, A: 255},
}

var riskNames = map[types.RiskTier]string{
	types.RiskHigh:   "Высокий",
	types.RiskMedium: "Средний",
	types.RiskLow:    "Низкий",
}

// Renderer draws defects over the base schematic.
type Renderer struct {
	BasePath string
	FontPath string
	Objects  []InfraObject
}

// Render paints infrastructure icons, risk-colored defect dots with id
// labels, and a legend on top of the base scheme, writing the PNG to w.
func (rd *Renderer) Render(defects []types.DefectRecord, w io.Writer) error {
	img, err := gg.LoadImage(rd.BasePath)
	if err != nil {
		return fmt.Errorf("load base scheme: %w", err)
	}
	dc := gg.NewContextForImage(img)

	// Missing font just drops labels, never fails the render.
	hasFont := rd.FontPath != "" && dc.LoadFontFace(rd.FontPath, 12) == nil

	for _, obj := range rd.Objects {
		x, y := float64(obj.X), float64(obj.Y)
		if obj.Type == "bypass" {
			dc.DrawRectangle(x-18, y-18, 36, 36)
			dc.SetRGB255(0, 100, 255)
			dc.FillPreserve()
			dc.SetRGB255(255, 255, 255)
			dc.SetLineWidth(3)
			dc.Stroke()
			if hasFont {
				dc.DrawStringAnchored("БП", x, y, 0.5, 0.5)
			}
		} else {
			dc.DrawCircle(x, y, 18)
			dc.SetRGB255(0, 180, 0)
			dc.FillPreserve()
			dc.SetRGB255(255, 255, 255)
			dc.SetLineWidth(3)
			dc.Stroke()
			if hasFont {
				dc.DrawStringAnchored("З", x, y, 0.5, 0.5)
			}
		}
	}

	const radius = 10.0
	for i, rec := range defects {
		x, y := float64(rec.SchemeX), float64(rec.SchemeY)
		c, ok := riskColors[rec.RiskClass]
		if !ok {
			c = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}

		// White halo so the dot reads on any background.
		dc.DrawCircle(x, y, radius+2)
		dc.SetRGB255(255, 255, 255)
		dc.Fill()
		dc.DrawCircle(x, y, radius)
		dc.SetColor(c)
		dc.Fill()

		if hasFont {
			label := rec.Identification
			if label == "" {
				label = fmt.Sprintf("%d", i+1)
			}
			if len([]rune(label)) > 8 {
				label = string([]rune(label)[:8])
			}
			tw, th := dc.MeasureString(label)
			tx, ty := x+radius+4, y-th/2
			dc.DrawRectangle(tx-2, ty-2, tw+4, th+4)
			dc.SetRGB255(255, 255, 255)
			dc.Fill()
			dc.SetRGB255(0, 0, 0)
			dc.DrawString(label, tx, ty+th)
		}
	}

	rd.drawLegend(dc, hasFont)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode scheme png: %w", err)
	}
	return nil
}

func (rd *Renderer) drawLegend(dc *gg.Context, hasFont bool) {
	const legendW, legendH = 180.0, 110.0
	lx := float64(dc.Width()) - legendW - 20
	ly := float64(dc.Height()) - legendH - 20

	dc.DrawRectangle(lx, ly, legendW, legendH)
	dc.SetRGBA255(255, 255, 255, 230)
	dc.FillPreserve()
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(2)
	dc.Stroke()

	if hasFont {
		dc.DrawString("Легенда:", lx+10, ly+20)
	}

	y := ly + 36.0
	for _, tier := range []types.RiskTier{types.RiskHigh, types.RiskMedium, types.RiskLow} {
		dc.DrawCircle(lx+18, y, 6)
		dc.SetColor(riskColors[tier])
		dc.FillPreserve()
		dc.SetRGB255(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()
		if hasFont {
			dc.DrawString(riskNames[tier], lx+32, y+4)
		}
		y += 24
	}
}
