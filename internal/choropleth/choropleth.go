// Package choropleth builds the Plotly figure description for the population
// map. The figure is rendered in the browser by plotly.js.
package choropleth

import (
	"fmt"
	"strconv"

	"asean-population/internal/models"
	"asean-population/internal/region"

	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultTitle = "Jumlah Penduduk Negara ASEAN (World Bank API, 2022)"
	Height       = 800
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ValidationError is returned when a figure cannot be built from the input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "cannot build map: " + e.Reason }

var ErrEmptyResultSet = &ValidationError{Reason: "result set is empty"}

// Blues is the ColorBrewer sequential blue scale.
var Blues = []ColorStop{
	{0, "rgb(247,251,255)"},
	{0.125, "rgb(222,235,247)"},
	{0.25, "rgb(198,219,239)"},
	{0.375, "rgb(158,202,225)"},
	{0.5, "rgb(107,174,214)"},
	{0.625, "rgb(66,146,198)"},
	{0.75, "rgb(33,113,181)"},
	{0.875, "rgb(8,81,156)"},
	{1, "rgb(8,48,107)"},
}

type ColorStop struct {
	Pos   float64
	Color string
}

func (c ColorStop) MarshalJSON() ([]byte, error) {
	return []byte("[" + strconv.FormatFloat(c.Pos, 'f', -1, 64) + "," + strconv.Quote(c.Color) + "]"), nil
}

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string      `json:"type"`
	LocationMode  string      `json:"locationmode"`
	Locations     []string    `json:"locations"`
	Z             []float64   `json:"z"`
	HoverText     []string    `json:"hovertext"`
	HoverTemplate string      `json:"hovertemplate"`
	ColorScale    []ColorStop `json:"colorscale"`
	ColorBar      ColorBar    `json:"colorbar"`
	Marker        Marker      `json:"marker"`
}

type ColorBar struct {
	Title Text `json:"title"`
}

type Marker struct {
	Line Line `json:"line"`
}

type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type Text struct {
	Text string  `json:"text"`
	X    float64 `json:"x,omitempty"`
}

type Layout struct {
	Title      Text   `json:"title"`
	Height     int    `json:"height"`
	ShowLegend bool   `json:"showlegend"`
	Margin     Margin `json:"margin"`
	Geo        Geo    `json:"geo"`
}

type Margin struct {
	R int `json:"r"`
	T int `json:"t"`
	L int `json:"l"`
	B int `json:"b"`
}

type Geo struct {
	Visible        bool       `json:"visible"`
	Resolution     int        `json:"resolution"`
	Projection     Projection `json:"projection"`
	ShowCountries  bool       `json:"showcountries"`
	CountryColor   string     `json:"countrycolor"`
	ShowCoastlines bool       `json:"showcoastlines"`
	CoastlineColor string     `json:"coastlinecolor"`
	ShowLand       bool       `json:"showland"`
	LandColor      string     `json:"landcolor"`
	LonAxis        Axis       `json:"lonaxis"`
	LatAxis        Axis       `json:"lataxis"`
}

type Projection struct {
	Type string `json:"type"`
}

type Axis struct {
	Range [2]float64 `json:"range"`
}

// Build turns a ResultSet into a single-trace choropleth keyed by country
// code, shaded by population in millions and cropped to the ASEAN window.
func Build(rs models.ResultSet, title string) (*Figure, error) {
	if len(rs) == 0 {
		return nil, ErrEmptyResultSet
	}
	seen := make(map[string]bool, len(rs))
	for _, r := range rs {
		if seen[r.Code] {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate country code %q", r.Code)}
		}
		seen[r.Code] = true
	}
	if title == "" {
		title = DefaultTitle
	}

	trace := Trace{
		Type:          "choropleth",
		LocationMode:  "ISO-3",
		Locations:     rs.Codes(),
		Z:             rs.Millions(),
		HoverText:     rs.Names(),
		HoverTemplate: "<b>%{hovertext}</b><br><br>wb_code=%{location}<br>population=%{z}<extra></extra>",
		ColorScale:    Blues,
		ColorBar:      ColorBar{Title: Text{Text: "population"}},
		Marker:        Marker{Line: Line{Color: "Black", Width: 0.5}},
	}

	return &Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title:      Text{Text: title, X: 0.5},
			Height:     Height,
			ShowLegend: true,
			Margin:     Margin{R: 0, T: 50, L: 0, B: 0},
			Geo: Geo{
				Visible:        true,
				Resolution:     50,
				Projection:     Projection{Type: "mercator"},
				ShowCountries:  true,
				CountryColor:   "Black",
				ShowCoastlines: true,
				CoastlineColor: "Black",
				ShowLand:       true,
				LandColor:      "LightGreen",
				LonAxis:        Axis{Range: region.ASEAN.LonRange()},
				LatAxis:        Axis{Range: region.ASEAN.LatRange()},
			},
		},
	}, nil
}

// Regions is the number of shaded countries.
func (f *Figure) Regions() int {
	if f == nil || len(f.Data) == 0 {
		return 0
	}
	return len(f.Data[0].Locations)
}

func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}
