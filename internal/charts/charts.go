package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"

	"laptopstats/internal/dataprocessing"
	apperrors "laptopstats/internal/errors"
)

// Chart identifiers, also used as output file names
const (
	PriceDistributionID = "price_distribution"
	PriceByTypeID       = "price_by_type"
	PriceVsScreenSizeID = "price_vs_screen_size"
	PriceByRAMID        = "price_by_ram"
	PriceByBrandID      = "price_by_brand"
)

// DefaultBins is the histogram bin count of the price distribution
const DefaultBins = 30

// Options configures where and how charts are written
type Options struct {
	Dir    string
	Format string // file extension understood by plot.Save, png when empty
	Bins   int
}

// Result is one rendered chart
type Result struct {
	ID       string
	Path     string
	Duration time.Duration
}

// Renderer draws the price charts of a cleaned table
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a Renderer
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if opts.Format == "" {
		opts.Format = "png"
	}
	opts.Format = strings.TrimPrefix(strings.ToLower(opts.Format), ".")
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{opts: opts, logger: logger}
}

type chartFunc func(t *dataprocessing.Table) (string, error)

// charts lists every chart in render order
func (r *Renderer) charts() []struct {
	id string
	fn chartFunc
} {
	return []struct {
		id string
		fn chartFunc
	}{
		{PriceDistributionID, r.PriceDistribution},
		{PriceByTypeID, r.PriceByType},
		{PriceVsScreenSizeID, r.PriceVsScreenSize},
		{PriceByRAMID, r.PriceByRAM},
		{PriceByBrandID, r.PriceByBrand},
	}
}

// RenderAll draws every chart, at most concurrency at a time, and returns
// the results in chart order. The first failure cancels charts not yet
// started.
func (r *Renderer) RenderAll(ctx context.Context, t *dataprocessing.Table, concurrency int) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	if err := os.MkdirAll(r.opts.Dir, 0755); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to create chart directory %s", r.opts.Dir), err)
	}

	charts := r.charts()
	results := make([]Result, len(charts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range charts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			path, err := c.fn(t)
			if err != nil {
				r.logger.ErrorContext(gctx, "Chart failed",
					slog.String("chart", c.id),
					slog.String("error", err.Error()))
				return err
			}
			results[i] = Result{ID: c.id, Path: path, Duration: time.Since(start)}
			r.logger.InfoContext(gctx, "Chart rendered",
				slog.String("chart", c.id),
				slog.String("path", path),
				slog.Duration("duration", results[i].Duration))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Path returns the file a chart is written to
func (r *Renderer) Path(id string) string {
	return filepath.Join(r.opts.Dir, id+"."+r.opts.Format)
}

func (r *Renderer) save(p *plot.Plot, id string, sz size) (string, error) {
	path := r.Path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to create chart directory %s", r.opts.Dir), err)
	}
	if err := p.Save(sz.W, sz.H, path); err != nil {
		return "", apperrors.NewRenderError(fmt.Sprintf("failed to save chart %s", id), err).
			WithContext("path", path)
	}
	return path, nil
}
