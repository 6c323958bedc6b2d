package models

type Coordinate struct {
	Lat float64
	Lon float64
}

// CountryRef is one row of the reference spreadsheet.
type CountryRef struct {
	Name string
	Loc  Coordinate
	Code string // ISO 3-letter code, join key against the indicator API
}

type PopulationRecord struct {
	Name               string
	Loc                Coordinate
	Code               string
	Raw                float64 // raw population count as published
	PopulationMillions float64
}

// NewPopulationRecord enriches ref with a raw indicator value.
func NewPopulationRecord(ref CountryRef, raw float64) PopulationRecord {
	return PopulationRecord{
		Name:               ref.Name,
		Loc:                ref.Loc,
		Code:               ref.Code,
		Raw:                raw,
		PopulationMillions: raw / 1_000_000,
	}
}

// ResultSet holds the resolved countries in reference-table order.
type ResultSet []PopulationRecord

func (rs ResultSet) Codes() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Code
	}
	return out
}

func (rs ResultSet) Names() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func (rs ResultSet) Millions() []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.PopulationMillions
	}
	return out
}

// Skip records a country left out of the ResultSet and why.
type Skip struct {
	Name   string
	Code   string
	Reason error
}

func (s Skip) String() string {
	if s.Reason == nil {
		return s.Name
	}
	return s.Name + ": " + s.Reason.Error()
}

// Outcome is the per-country result of an indicator lookup. Exactly one of
// Record and Skip is set.
type Outcome struct {
	Record *PopulationRecord
	Skip   *Skip
}

func (o Outcome) OK() bool { return o.Record != nil }
