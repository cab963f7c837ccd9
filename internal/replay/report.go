package replay

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTMLReport renders a replay summary as a standalone HTML page: one
// scatter of each entity's path (trigger ticks highlighted) and one line
// chart of the wiggle ratio over time with the threshold for reference.
func WriteHTMLReport(sum *Summary, outPath string) error {
	page := components.NewPage()
	page.AddCharts(pathScatter(sum), ratioLine(sum))

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func entityIDs(sum *Summary) []string {
	ids := make([]string, 0, len(sum.PerEntity))
	for id := range sum.PerEntity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func pathScatter(sum *Summary) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Motion paths",
			Subtitle: fmt.Sprintf("ticks=%d events=%d", sum.Ticks, len(sum.Events)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (px)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (px)"}),
	)

	for _, id := range entityIDs(sum) {
		var data, fires []opts.ScatterData
		for _, r := range sum.Records {
			if r.EntityID != id {
				continue
			}
			data = append(data, opts.ScatterData{Value: []interface{}{r.X, r.Y}})
			if r.Fired {
				fires = append(fires, opts.ScatterData{Value: []interface{}{r.X, r.Y}})
			}
		}
		scatter.AddSeries(id, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
		if len(fires) > 0 {
			scatter.AddSeries(id+" trigger", fires, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
		}
	}
	return scatter
}

func ratioLine(sum *Summary) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Wiggle ratio over time",
			Subtitle: fmt.Sprintf("threshold=%.2f", sum.Thresholds.WiggleRatioThreshold),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ratio"}),
	)

	var ts []string
	for _, r := range sum.Records {
		ts = append(ts, fmt.Sprintf("%.2f", r.T))
	}
	line.SetXAxis(ts)

	for _, id := range entityIDs(sum) {
		var data []opts.LineData
		for _, r := range sum.Records {
			if r.EntityID == id {
				data = append(data, opts.LineData{Value: r.Metrics.WiggleRatio})
			} else {
				data = append(data, opts.LineData{Value: nil})
			}
		}
		line.AddSeries(id, data)
	}

	threshold := make([]opts.LineData, len(sum.Records))
	for i := range threshold {
		threshold[i] = opts.LineData{Value: sum.Thresholds.WiggleRatioThreshold}
	}
	line.AddSeries("threshold", threshold)

	return line
}
