// Package region holds the fixed map window the dashboard is cropped to.
package region

import (
	"asean-population/internal/models"

	"github.com/twpayne/go-geom"
)

// Box is a lon/lat rectangle.
type Box struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// ASEAN covers mainland and maritime Southeast Asia.
var ASEAN = Box{MinLon: 90, MaxLon: 155, MinLat: -5, MaxLat: 28}

func (b Box) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

func (b Box) Contains(c models.Coordinate) bool {
	return b.Bounds().OverlapsPoint(geom.XY, geom.Coord{c.Lon, c.Lat})
}

func (b Box) LonRange() [2]float64 { return [2]float64{b.MinLon, b.MaxLon} }
func (b Box) LatRange() [2]float64 { return [2]float64{b.MinLat, b.MaxLat} }
