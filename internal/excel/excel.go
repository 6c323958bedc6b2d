package excel

import (
	"fmt"

	"asean-population/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ResultSheet = "Populasi"
	SkipSheet   = "Gagal"
)

// Build lays the ResultSet and the skipped countries out on two sheets.
func Build(data models.ResultSet, skips []models.Skip) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(ResultSheet); err != nil {
		return nil, err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(ResultSheet)
	if err != nil {
		return nil, err
	}

	headers := []interface{}{
		"country", "lat", "lon", "wb_code", "population (juta)", "population",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return nil, err
	}

	for i, r := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Name, r.Loc.Lat, r.Loc.Lon, r.Code,
			r.PopulationMillions, r.Raw,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	if len(skips) > 0 {
		if _, err := f.NewSheet(SkipSheet); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SkipSheet, "A1", &[]interface{}{"country", "wb_code", "reason"}); err != nil {
			return nil, err
		}
		for i, s := range skips {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			reason := ""
			if s.Reason != nil {
				reason = s.Reason.Error()
			}
			if err := f.SetSheetRow(SkipSheet, cell, &[]interface{}{s.Name, s.Code, reason}); err != nil {
				return nil, err
			}
		}
	}

	// Delete default sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(ResultSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	return f, nil
}

// WriteResult saves the workbook built by Build to path.
func WriteResult(path string, data models.ResultSet, skips []models.Skip) error {
	f, err := Build(data, skips)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
