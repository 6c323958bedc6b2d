// Package pipeline runs the load, fetch and render stages once and hands the
// result to the caller.
package pipeline

import (
	"context"
	"fmt"

	"asean-population/internal/choropleth"
	"asean-population/internal/dashboard"
	"asean-population/internal/logging"
	"asean-population/internal/metrics"
	"asean-population/internal/models"
	"asean-population/internal/sheet"
	"asean-population/internal/worldbank"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferenceLoader supplies the country reference table.
type ReferenceLoader interface {
	Load(ctx context.Context) ([]models.CountryRef, error)
}

// IndicatorSource resolves one indicator value per country.
type IndicatorSource interface {
	Collect(ctx context.Context, refs []models.CountryRef, onProgress worldbank.ProgressCallback) worldbank.Result
}

type Deps struct {
	Loader  ReferenceLoader
	Source  IndicatorSource
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Title   string
}

// NewDeps wires the production spreadsheet and World Bank client.
func NewDeps(logger *zap.Logger, m *metrics.Collector) Deps {
	return Deps{
		Loader:  sheet.NewLoader(logger),
		Source:  worldbank.NewClient(logger, m),
		Logger:  logger,
		Metrics: m,
	}
}

// Dashboard is everything a run produces.
type Dashboard struct {
	RunID      string
	References []models.CountryRef
	Fetch      worldbank.Result
	Figure     *choropleth.Figure
	Page       dashboard.Page
}

func (d *Dashboard) Records() models.ResultSet { return d.Fetch.Records }
func (d *Dashboard) Skips() []models.Skip      { return d.Fetch.Skips }

// Build runs the whole pipeline. A reference table error aborts before any
// indicator request is made; an empty ResultSet aborts before the page is
// composed.
func Build(ctx context.Context, deps Deps) (*Dashboard, error) {
	runID := uuid.New().String()
	logger := logging.OrNop(deps.Logger).With(zap.String("run_id", runID))

	refs, err := deps.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference table: %w", err)
	}
	logger.Info("Reference table loaded", zap.Int("countries", len(refs)))

	res := deps.Source.Collect(ctx, refs, func(current, total int, msg string) {
		if msg != "" {
			logger.Debug("Indicator progress", zap.Int("current", current), zap.Int("total", total), zap.String("msg", msg))
		}
	})
	deps.Metrics.SetCounts(len(refs), len(res.Records))

	fig, err := choropleth.Build(res.Records, deps.Title)
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	logger.Info("Map built", zap.Int("regions", fig.Regions()), zap.Int("skipped", len(res.Skips)))

	return &Dashboard{
		RunID:      runID,
		References: refs,
		Fetch:      res,
		Figure:     fig,
		Page:       dashboard.Compose(fig),
	}, nil
}
