package sheet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"asean-population/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const aseanCSV = `country,lat,lon,wb_code
Indonesia,-0.789275,113.921327,IDN
Singapore,1.352083,103.819836,SGP
Malaysia,"4,210484",101.975766,MYS
`

func TestParseReadsRows(t *testing.T) {
	got, err := Parse(strings.NewReader(aseanCSV), nil)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, models.CountryRef{
		Name: "Indonesia",
		Code: "IDN",
		Loc:  models.Coordinate{Lat: -0.789275, Lon: 113.921327},
	}, got[0])
	assert.Equal(t, "SGP", got[1].Code)
	assert.InDelta(t, 4.210484, got[2].Loc.Lat, 1e-9, "decimal comma accepted")
}

func TestParseLogsColumns(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := Parse(strings.NewReader(aseanCSV), zap.New(core))
	require.NoError(t, err)

	entries := logs.FilterMessage("Spreadsheet columns").All()
	require.Len(t, entries, 1)
	assert.Equal(t, []interface{}{"country", "lat", "lon", "wb_code"}, entries[0].ContextMap()["columns"])
}

func TestParseMissingColumns(t *testing.T) {
	csv := "name,latitude,lon,wb_code\nIndonesia,-0.78,113.9,IDN\n"

	_, err := Parse(strings.NewReader(csv), nil)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"country", "lat"}, cfgErr.Missing)
	assert.Equal(t, []string{"name", "latitude", "lon", "wb_code"}, cfgErr.Present)
	assert.Contains(t, err.Error(), `"country", "lat"`)
	assert.Contains(t, err.Error(), `"latitude"`)
}

func TestParseColumnsAreCaseSensitive(t *testing.T) {
	_, err := Parse(strings.NewReader("Country,LAT,Lon,WB_CODE\n"), nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, RequiredColumns, cfgErr.Missing)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""), nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, RequiredColumns, cfgErr.Missing)
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		column string
		row    int
	}{
		{"empty name", "country,lat,lon,wb_code\n,1,100,IDN\n", ColCountry, 2},
		{"short row", "country,lat,lon,wb_code\nIndonesia,1,100\n", ColCode, 2},
		{"bad latitude", "country,lat,lon,wb_code\nIndonesia,north,100,IDN\n", ColLat, 2},
		{"bad longitude", "country,lat,lon,wb_code\nIndonesia,1,east,IDN\n", ColLon, 2},
		{"four-letter code", "country,lat,lon,wb_code\nIndonesia,1,100,INDO\n", ColCode, 2},
		{"two-letter code", "country,lat,lon,wb_code\nIndonesia,1,100,ID\n", ColCode, 2},
		{"numeric code", "country,lat,lon,wb_code\nIndonesia,1,100,360\n", ColCode, 2},
		{"duplicate code", "country,lat,lon,wb_code\nIndonesia,1,100,IDN\nIndonesia 2,1,100,IDN\n", ColCode, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.csv), nil)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.column, cfgErr.Column)
			assert.Equal(t, tt.row, cfgErr.Row)
			assert.Empty(t, cfgErr.Missing)
		})
	}
}

func TestParseRejectsMalformedCode(t *testing.T) {
	_, err := Parse(strings.NewReader("country,lat,lon,wb_code\nIndonesia,-0.78,113.9,INDO\n"), nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ColCode, cfgErr.Column)
	assert.Contains(t, err.Error(), `"INDO"`)
}

func TestIsCountryCode(t *testing.T) {
	assert.True(t, isCountryCode("IDN"))
	assert.True(t, isCountryCode("sgp"))
	assert.False(t, isCountryCode("INDO"))
	assert.False(t, isCountryCode("I1N"))
	assert.False(t, isCountryCode("ÍDN"))
}

func TestParseSkipsBlankRowsAndExtraColumns(t *testing.T) {
	csv := "wb_code,extra,country,lat,lon\nTHA,x,Thailand,15.87,100.99\n,,,,\n"

	got, err := Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Thailand", got[0].Name)
	assert.Equal(t, "THA", got[0].Code)
}

func TestParseWarnsOutsideRegion(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	csv := "country,lat,lon,wb_code\nJapan,36.2,138.25,JPN\n"

	got, err := Parse(strings.NewReader(csv), zap.New(core))
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.Equal(t, 1, logs.FilterMessage("Country lies outside the map window").Len())
}

func TestLoaderLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(aseanCSV))
	}))
	defer srv.Close()

	l := &Loader{URL: srv.URL, Client: srv.Client()}
	got, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLoaderLoadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	l := &Loader{URL: srv.URL, Client: srv.Client()}
	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
