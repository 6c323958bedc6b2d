// Package dashboard composes the single dashboard page and serves it with gin.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"asean-population/internal/choropleth"
	"asean-population/internal/logging"
	"asean-population/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	Heading    = "Visualisasi Jumlah Penduduk di Negara-Negara ASEAN"
	Subheading = "Data dari World Bank API"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Page struct {
	Title      string
	Heading    string
	Subheading string
	Figure     *choropleth.Figure
}

// Compose places the figure under the fixed heading and subheading.
func Compose(fig *choropleth.Figure) Page {
	title := choropleth.DefaultTitle
	if fig != nil && fig.Layout.Title.Text != "" {
		title = fig.Layout.Title.Text
	}
	return Page{
		Title:      title,
		Heading:    Heading,
		Subheading: Subheading,
		Figure:     fig,
	}
}

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// NewRouter serves the page at GET /. The figure is encoded once up front.
func NewRouter(page Page, opts Options) (*gin.Engine, error) {
	if page.Figure == nil {
		return nil, errors.New("dashboard: page has no figure")
	}
	figJSON, err := page.Figure.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := logging.OrNop(opts.Logger)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.SetHTMLTemplate(tmpl)

	data := gin.H{
		"Title":      page.Title,
		"Heading":    page.Heading,
		"Subheading": page.Subheading,
		"Figure":     template.JS(figJSON),
	}

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", data)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	return r, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// Serve runs handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
