package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"laptopstats/internal/dataprocessing"
	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// kdePoints is the number of samples along the density curve
const kdePoints = 200

// PriceDistribution draws a histogram of Price_euros with a kernel density
// estimate scaled to the bin counts.
func (r *Renderer) PriceDistribution(t *dataprocessing.Table) (string, error) {
	prices, err := presentFloats(t, domain.ColPrice)
	if err != nil {
		return "", err
	}

	p := newPlot("Laptop Price Distribution", "Price in Euros", "Frequency")
	p.Add(dashedGrid(true, true))

	hist, err := plotter.NewHist(plotter.Values(prices), r.opts.Bins)
	if err != nil {
		return "", apperrors.NewRenderError("failed to build price histogram", err)
	}
	hist.FillColor = Palette[0]
	hist.LineStyle.Color = color.Black
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)

	if line := densityLine(prices, hist.Width); line != nil {
		line.LineStyle.Color = Palette[0]
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
	}

	return r.save(p, PriceDistributionID, wideSize)
}

// gaussianDensity is a Gaussian kernel density estimate of sample with
// Scott's bandwidth
func gaussianDensity(sample stats.Sample) *stats.KDE {
	return &stats.KDE{
		Sample:    sample,
		Kernel:    stats.GaussianKernel,
		Bandwidth: stats.BandwidthScott(sample),
	}
}

// densityLine returns the Gaussian density estimate of x scaled by
// len(x)*binWidth so it overlays a count histogram, or nil when x has no
// spread.
func densityLine(x []float64, binWidth float64) *plotter.Line {
	sample := stats.Sample{Xs: x}
	if len(x) < 2 || sample.StdDev() == 0 || binWidth <= 0 {
		return nil
	}
	kde := gaussianDensity(sample)
	lo, hi := sample.Bounds()
	scale := float64(len(x)) * binWidth

	xys := make(plotter.XYs, kdePoints)
	step := (hi - lo) / float64(kdePoints-1)
	for i := range xys {
		xv := lo + float64(i)*step
		xys[i].X = xv
		xys[i].Y = kde.PDF(xv) * scale
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil
	}
	return line
}

// PriceByType draws a box plot of Price_euros for each TypeName
func (r *Renderer) PriceByType(t *dataprocessing.Table) (string, error) {
	keys, values, err := dataprocessing.GroupValues(t, domain.ColTypeName, domain.ColPrice)
	if err != nil {
		return "", err
	}

	p := newPlot("Laptop Price by Type", "Laptop Type", "Price in Euros")
	p.Add(dashedGrid(false, true))

	width := categoryWidth(len(keys), largeSize.W)
	for i, key := range keys {
		box, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(values[key]))
		if err != nil {
			return "", apperrors.NewRenderError(fmt.Sprintf("failed to build box for %q", key), err)
		}
		box.FillColor = PaletteColor(i)
		p.Add(box)
	}
	p.NominalX(keys...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return r.save(p, PriceByTypeID, largeSize)
}

// PriceVsScreenSize draws the mean price per screen size as a line with
// markers.
func (r *Renderer) PriceVsScreenSize(t *dataprocessing.Table) (string, error) {
	means, err := dataprocessing.GroupMean(t, domain.ColInches, domain.ColPrice, dataprocessing.OrderByKey)
	if err != nil {
		return "", err
	}
	xys, err := groupXYs(means)
	if err != nil {
		return "", err
	}

	p := newPlot("Trend of Laptop Price vs. Screen Size", "Screen Size (Inches)", "Average Price in Euros")
	p.Add(dashedGrid(true, true))

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return "", apperrors.NewRenderError("failed to build screen size trend", err)
	}
	line.LineStyle.Color = Palette[2]
	line.LineStyle.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = Palette[2]
	points.Radius = vg.Points(3)
	p.Add(line, points)

	return r.save(p, PriceVsScreenSizeID, wideSize)
}

// PriceByRAM draws one vertical bar per RAM size holding its mean price
func (r *Renderer) PriceByRAM(t *dataprocessing.Table) (string, error) {
	means, err := dataprocessing.GroupMean(t, domain.ColRam, domain.ColPrice, dataprocessing.OrderByKey)
	if err != nil {
		return "", err
	}

	p := newPlot("Average Laptop Price by RAM Size", "RAM (GB)", "Average Price in Euros")
	p.Add(dashedGrid(false, true))

	if err := addBars(p, means, wideSize.W, false); err != nil {
		return "", err
	}
	p.NominalX(groupKeys(means)...)

	return r.save(p, PriceByRAMID, wideSize)
}

// PriceByBrand draws one horizontal bar per Company holding its mean
// price, most expensive brand on top.
func (r *Renderer) PriceByBrand(t *dataprocessing.Table) (string, error) {
	means, err := dataprocessing.GroupMean(t, domain.ColCompany, domain.ColPrice, dataprocessing.OrderByMeanDesc)
	if err != nil {
		return "", err
	}
	// the y axis grows upwards, so reverse to put the first group on top
	bottomUp := make([]domain.GroupMean, len(means))
	for i, m := range means {
		bottomUp[len(means)-1-i] = m
	}

	p := newPlot("Average Laptop Price by Brand", "Average Price (Euros)", "Brand")
	p.Add(dashedGrid(true, false))

	if err := addBars(p, bottomUp, largeSize.H, true); err != nil {
		return "", err
	}
	p.NominalY(groupKeys(bottomUp)...)

	return r.save(p, PriceByBrandID, largeSize)
}

// addBars adds one single-valued bar chart per group so each bar takes its
// own palette colour. Colours follow the original group order.
func addBars(p *plot.Plot, groups []domain.GroupMean, span vg.Length, horizontal bool) error {
	width := categoryWidth(len(groups), span)
	for i, g := range groups {
		bar, err := plotter.NewBarChart(plotter.Values{g.Mean}, width)
		if err != nil {
			return apperrors.NewRenderError(fmt.Sprintf("failed to build bar for %q", g.Key), err)
		}
		colorIndex := i
		if horizontal {
			colorIndex = len(groups) - 1 - i
		}
		bar.Color = PaletteColor(colorIndex)
		bar.LineStyle.Width = 0
		bar.XMin = float64(i)
		bar.Horizontal = horizontal
		p.Add(bar)
	}
	return nil
}

func groupKeys(groups []domain.GroupMean) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

func groupXYs(groups []domain.GroupMean) (plotter.XYs, error) {
	xys := make(plotter.XYs, len(groups))
	for i, g := range groups {
		x, err := strconv.ParseFloat(g.Key, 64)
		if err != nil {
			return nil, apperrors.NewRenderError(fmt.Sprintf("group key %q is not numeric", g.Key), err)
		}
		xys[i] = plotter.XY{X: x, Y: g.Mean}
	}
	return xys, nil
}

func presentFloats(t *dataprocessing.Table, column string) ([]float64, error) {
	vals, err := t.Floats(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NewRenderError(fmt.Sprintf("column %q has no values to plot", column), nil)
	}
	return out, nil
}
