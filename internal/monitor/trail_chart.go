package monitor

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleTrailChart renders a quick scatter (HTML) of one session's current
// motion buffer using go-echarts. Debugging-only endpoint for eyeballing
// what the classifier is looking at without any frontend.
// Query params:
//   - entity_id (required)
func (ws *WebServer) handleTrailChart(w http.ResponseWriter, r *http.Request) {
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing entity_id")
		return
	}

	var data []opts.ScatterData
	var subtitle string
	for _, st := range ws.detector.SessionStates(true) {
		if st.EntityID != entityID {
			continue
		}
		for _, s := range st.Samples {
			data = append(data, opts.ScatterData{Value: []interface{}{s.X, s.Y}})
		}
		subtitle = fmt.Sprintf("samples=%d ratio=%.2f reversals=%d",
			st.SampleCount, st.LastMetrics.WiggleRatio, st.LastMetrics.Reversals)
	}
	if subtitle == "" {
		ws.writeJSONError(w, http.StatusNotFound, "no session for entity")
		return
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motion trail", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Trail: %s", entityID), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (px)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (px)"}),
	)
	scatter.AddSeries("trail", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
