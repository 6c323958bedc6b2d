package choropleth

import (
	"errors"
	"testing"

	"asean-population/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = models.ResultSet{
	{Name: "Indonesia", Code: "IDN", PopulationMillions: 273.5},
	{Name: "Philippines", Code: "PHL", PopulationMillions: 115.6},
	{Name: "Viet Nam", Code: "VNM", PopulationMillions: 98.2},
}

func TestBuildEmptyResultSet(t *testing.T) {
	fig, err := Build(nil, "")

	assert.Nil(t, fig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResultSet))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestBuildDuplicateCode(t *testing.T) {
	rs := models.ResultSet{{Name: "A", Code: "IDN"}, {Name: "B", Code: "IDN"}}

	_, err := Build(rs, "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "IDN")
}

func TestBuildOneRegionPerRecord(t *testing.T) {
	fig, err := Build(sample, "Population")
	require.NoError(t, err)

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, "choropleth", tr.Type)
	assert.Equal(t, "ISO-3", tr.LocationMode)
	assert.Equal(t, []string{"IDN", "PHL", "VNM"}, tr.Locations)
	assert.Equal(t, []string{"Indonesia", "Philippines", "Viet Nam"}, tr.HoverText)
	assert.Equal(t, []float64{273.5, 115.6, 98.2}, tr.Z)
	assert.Equal(t, Blues, tr.ColorScale)
	assert.Equal(t, 3, fig.Regions())
}

func TestBuildFixedLayout(t *testing.T) {
	fig, err := Build(sample[:1], "")
	require.NoError(t, err)

	l := fig.Layout
	assert.Equal(t, DefaultTitle, l.Title.Text)
	assert.Equal(t, 0.5, l.Title.X)
	assert.Equal(t, Height, l.Height)
	assert.Equal(t, Margin{R: 0, T: 50, L: 0, B: 0}, l.Margin)
	assert.Equal(t, [2]float64{90, 155}, l.Geo.LonAxis.Range)
	assert.Equal(t, [2]float64{-5, 28}, l.Geo.LatAxis.Range)
	assert.Equal(t, "mercator", l.Geo.Projection.Type)
	assert.True(t, l.Geo.ShowCountries)
	assert.True(t, l.Geo.ShowCoastlines)
	assert.Equal(t, "LightGreen", l.Geo.LandColor)
}

func TestFigureJSON(t *testing.T) {
	fig, err := Build(sample[:1], "")
	require.NoError(t, err)

	raw, err := fig.JSON()
	require.NoError(t, err)

	var decoded struct {
		Data []struct {
			Type       string          `json:"type"`
			Locations  []string        `json:"locations"`
			ColorScale [][]interface{} `json:"colorscale"`
		} `json:"data"`
		Layout struct {
			Geo struct {
				LonAxis struct {
					Range []float64 `json:"range"`
				} `json:"lonaxis"`
			} `json:"geo"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded.Data, 1)
	assert.Equal(t, []string{"IDN"}, decoded.Data[0].Locations)
	assert.Equal(t, []interface{}{0.0, "rgb(247,251,255)"}, decoded.Data[0].ColorScale[0])
	assert.Equal(t, []float64{90, 155}, decoded.Layout.Geo.LonAxis.Range)
}

func TestRegionsNilFigure(t *testing.T) {
	var f *Figure
	assert.Zero(t, f.Regions())
}
