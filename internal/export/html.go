// Package export renders stored runs to standalone HTML reports.
package export

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/swarmlab/internal/storage"
)

// Viridis-like ramp for the phase visual map.
var phaseRamp = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// WriteHTML renders the final ensemble snapshot (scatter colored by phase)
// and the order-parameter series of a run into one HTML page.
func WriteHTML(path string, meta *storage.RunMeta, series *storage.Series) error {
	if len(series.States) == 0 {
		return fmt.Errorf("run %s has no samples to export", meta.ID)
	}

	page := components.NewPage()
	page.AddCharts(snapshotChart(meta, series), orderChart(series))

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return page.Render(file)
}

func snapshotChart(meta *storage.RunMeta, series *storage.Series) *charts.Scatter {
	final := series.States[len(series.States)-1]
	agents := len(final) / 3

	data := make([]opts.ScatterData, 0, agents)
	pad := 0.0
	for i := 0; i < agents; i++ {
		x, y, theta := final[i*3], final[i*3+1], final[i*3+2]
		// Phase normalized to [0, 2π) keys the visual map.
		norm := math.Mod(theta, 2*math.Pi)
		if norm < 0 {
			norm += 2 * math.Pi
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, norm}})
		pad = math.Max(pad, math.Max(math.Abs(x), math.Abs(y)))
	}
	pad *= 1.1

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "swarmalators", Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Final ensemble state",
			Subtitle: fmt.Sprintf("run=%s agents=%d K=%.2f J=%.2f", meta.ID, meta.Agents, meta.K, meta.J),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:    opts.Bool(true),
			Min:     0,
			Max:     float32(2 * math.Pi),
			InRange: &opts.VisualMapInRange{Color: phaseRamp},
		}),
	)
	scatter.AddSeries("agents", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

func orderChart(series *storage.Series) *charts.Line {
	times := make([]string, len(series.Times))
	coherence := make([]opts.LineData, len(series.Times))
	sPlus := make([]opts.LineData, len(series.Times))
	sMinus := make([]opts.LineData, len(series.Times))
	for i, t := range series.Times {
		times[i] = fmt.Sprintf("%.2f", t)
		coherence[i] = opts.LineData{Value: series.Coherence[i]}
		sPlus[i] = opts.LineData{Value: series.SPlus[i]}
		sMinus[i] = opts.LineData{Value: series.SMinus[i]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Order parameters"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)
	line.SetXAxis(times).
		AddSeries("coherence", coherence).
		AddSeries("s_plus", sPlus).
		AddSeries("s_minus", sMinus)
	return line
}
