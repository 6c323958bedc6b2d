// Package sheet loads the country reference table from the published
// spreadsheet.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"asean-population/internal/logging"
	"asean-population/internal/models"
	"asean-population/internal/region"

	"go.uber.org/zap"
)

// DefaultURL is the published CSV export of the ASEAN country list.
const DefaultURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSBWnU-Uoe0VGRXAAb4Q_zOZgu8nwmmY4e2LBJ4TyoPe0_Zu_4PcTaqwnGreA09IhzQ8dpr9NcAmlQF/pub?output=csv"

const (
	ColCountry = "country"
	ColLat     = "lat"
	ColLon     = "lon"
	ColCode    = "wb_code"
)

var RequiredColumns = []string{ColCountry, ColLat, ColLon, ColCode}

// ConfigError reports a reference table that cannot be used. It is fatal.
type ConfigError struct {
	Missing []string // required columns absent from the header
	Present []string // header as retrieved
	Row     int      // 1-based spreadsheet row for row-level problems
	Column  string
	Detail  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("spreadsheet is missing column(s) %s; available columns: %s",
			quoteAll(e.Missing), quoteAll(e.Present))
	}
	return fmt.Sprintf("spreadsheet row %d, column %q: %s", e.Row, e.Column, e.Detail)
}

type Loader struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{URL: DefaultURL, Client: http.DefaultClient, Logger: logger}
}

// Load downloads and parses the reference table.
func (l *Loader) Load(ctx context.Context) ([]models.CountryRef, error) {
	url := l.URL
	if url == "" {
		url = DefaultURL
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build spreadsheet request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch spreadsheet: unexpected status %s", resp.Status)
	}
	return Parse(resp.Body, l.Logger)
}

// Parse reads CSV text with a header row into country references.
func Parse(r io.Reader, logger *zap.Logger) ([]models.CountryRef, error) {
	logger = logging.OrNop(logger)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
		}
	}
	logger.Info("Spreadsheet columns", zap.Strings("columns", header))

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var countries []models.CountryRef
	seen := make(map[string]int)
	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}
		if blank(row) {
			continue
		}
		rowNum := i + 1

		fields := make(map[string]string, len(RequiredColumns))
		for _, col := range RequiredColumns {
			idx := index[col]
			val := ""
			if idx < len(row) {
				val = strings.TrimSpace(row[idx])
			}
			if val == "" {
				return nil, &ConfigError{Row: rowNum, Column: col, Detail: "value is empty"}
			}
			fields[col] = val
		}

		lat, err := parseCoord(fields[ColLat])
		if err != nil {
			return nil, &ConfigError{Row: rowNum, Column: ColLat, Detail: err.Error()}
		}
		lon, err := parseCoord(fields[ColLon])
		if err != nil {
			return nil, &ConfigError{Row: rowNum, Column: ColLon, Detail: err.Error()}
		}

		code := fields[ColCode]
		if !isCountryCode(code) {
			return nil, &ConfigError{Row: rowNum, Column: ColCode,
				Detail: fmt.Sprintf("code %q is not a 3-letter country code", code)}
		}
		if prev, dup := seen[code]; dup {
			return nil, &ConfigError{Row: rowNum, Column: ColCode,
				Detail: fmt.Sprintf("code %q already used on row %d", code, prev)}
		}
		seen[code] = rowNum

		c := models.CountryRef{
			Name: fields[ColCountry],
			Code: code,
			Loc:  models.Coordinate{Lat: lat, Lon: lon},
		}
		if !region.ASEAN.Contains(c.Loc) {
			logger.Warn("Country lies outside the map window",
				zap.String("country", c.Name), zap.Float64("lat", lat), zap.Float64("lon", lon))
		}
		countries = append(countries, c)
	}
	return countries, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		present := append([]string(nil), header...)
		return nil, &ConfigError{Missing: missing, Present: present}
	}
	return index, nil
}

func parseCoord(val string) (float64, error) {
	// Replace comma with dot for locales that use a decimal comma
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, errors.New("empty")
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", val)
	}
	return f, nil
}

func isCountryCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = strconv.Quote(n)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
