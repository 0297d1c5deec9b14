// Package scheme places defects on the pipeline schematic and classifies
// their proximity to known infrastructure objects.
package scheme

import (
	"math"
	"math/rand"

	"pipeline-insights-go/internal/types"
)

// InfraObject is a known infrastructure feature at a fixed pixel position on
// the base schematic drawing.
type InfraObject struct {
	Name string
	X    int
	Y    int
	Type string // "bypass" or "valve"
}

// DefaultInfrastructure matches the annotated base scheme.png.
var DefaultInfrastructure = []InfraObject{
	{Name: "трубопровод-байпасс", X: 678, Y: 243, Type: "bypass"},
	{Name: "трубопровод-задвижка", X: 563, Y: 349, Type: "valve"},
	{Name: "трубопровод-задвижка", X: 393, Y: 191, Type: "valve"},
	{Name: "трубопровод-задвижка", X: 569, Y: 113, Type: "valve"},
}

// ProximityThresholdPx is the pixel radius within which a defect counts as
// sitting next to an infrastructure object.
const ProximityThresholdPx = 100.0

// RemoteLocation labels defects that sit near no known object.
const RemoteLocation = "удаленный участок трубопровода"

const (
	frameWidth  = 1200
	frameHeight = 800
	frameMargin = 100
)

// Nearest finds the infrastructure object closest to the given pixel position
// and whether it is within the proximity threshold.
func Nearest(x, y int, objects []InfraObject) (InfraObject, float64, bool) {
	var nearest InfraObject
	best := math.Inf(1)
	for _, obj := range objects {
		d := math.Hypot(float64(obj.X-x), float64(obj.Y-y))
		if d < best {
			best = d
			nearest = obj
		}
	}
	return nearest, best, best < ProximityThresholdPx
}

// AssignCoordinates places every defect on the schematic and attaches its
// infrastructure classification. Placement is randomized within the frame;
// the sheet carries no pixel geometry to derive a real position from.
func AssignCoordinates(defects []types.DefectRecord, objects []InfraObject, rng *rand.Rand) []types.DefectRecord {
	out := make([]types.DefectRecord, len(defects))
	for i, rec := range defects {
		rec.SchemeX = frameMargin + rng.Intn(frameWidth-2*frameMargin)
		rec.SchemeY = frameMargin + rng.Intn(frameHeight-2*frameMargin)

		obj, dist, near := Nearest(rec.SchemeX, rec.SchemeY, objects)
		if near {
			rec.InfraLocation = obj.Name
		} else {
			rec.InfraLocation = RemoteLocation
		}
		rec.InfraDistancePx = dist
		out[i] = rec
	}
	return out
}

// DefectAt finds the defect under a click position, if any is within the
// tolerance radius.
func DefectAt(defects []types.DefectRecord, x, y, tolerance int) (types.DefectRecord, bool) {
	for _, rec := range defects {
		d := math.Hypot(float64(rec.SchemeX-x), float64(rec.SchemeY-y))
		if d <= float64(tolerance) {
			return rec, true
		}
	}
	return types.DefectRecord{}, false
}

// GroupByInfrastructure counts defects per classified location.
func GroupByInfrastructure(defects []types.DefectRecord) map[string]int {
	groups := map[string]int{}
	for _, rec := range defects {
		loc := rec.InfraLocation
		if loc == "" {
			loc = RemoteLocation
		}
		groups[loc]++
	}
	return groups
}
