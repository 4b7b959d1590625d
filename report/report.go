// Package report renders per-trial diagnostic charts so segmentation and
// alignment results can be eyeballed without rerunning anything.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lucasjlepore/rep-analyzer/segment"
)

// TrialChart describes one trial's segmentation view.
type TrialChart struct {
	Subject   string
	SetID     int
	ShiftS    float64 // estimated clock offset applied to the skeleton stream
	Times     []float64
	Signal    []float64
	Peaks     []int
	Intervals []segment.Interval
}

// Render writes an HTML line chart of the segmentation signal with the
// detected peaks overlaid as a scatter series and interval boundaries as a
// second one.
func (c *TrialChart) Render(path string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s set %d", c.Subject, c.SetID),
			Width:     "1200px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Segmentation %s set %d", c.Subject, c.SetID),
			Subtitle: fmt.Sprintf("peaks=%d intervals=%d shift=%.3fs", len(c.Peaks), len(c.Intervals), c.ShiftS),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
	)

	xs := make([]string, len(c.Times))
	ys := make([]opts.LineData, len(c.Signal))
	for i, t := range c.Times {
		xs[i] = fmt.Sprintf("%.3f", t)
		ys[i] = opts.LineData{Value: c.Signal[i]}
	}
	line.SetXAxis(xs).AddSeries("signal", ys)

	peaks := make([]opts.ScatterData, 0, len(c.Peaks))
	for _, p := range c.Peaks {
		if p < 0 || p >= len(c.Signal) {
			continue
		}
		peaks = append(peaks, opts.ScatterData{Value: []interface{}{fmt.Sprintf("%.3f", c.Times[p]), c.Signal[p]}})
	}
	scatter := charts.NewScatter()
	scatter.AddSeries("peaks", peaks, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	bounds := make([]opts.ScatterData, 0, len(c.Intervals)*2)
	for _, iv := range c.Intervals {
		for _, b := range []int{iv.Start, iv.End} {
			if b < 0 || b >= len(c.Signal) {
				continue
			}
			bounds = append(bounds, opts.ScatterData{Value: []interface{}{fmt.Sprintf("%.3f", c.Times[b]), c.Signal[b]}})
		}
	}
	boundSeries := charts.NewScatter()
	boundSeries.AddSeries("boundaries", bounds, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	line.Overlap(scatter)
	line.Overlap(boundSeries)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
