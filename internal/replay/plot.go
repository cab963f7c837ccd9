package replay

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePathPlots writes one PNG per entity into outputDir, tracing the
// entity's recorded path with trigger positions marked.
func SavePathPlots(sum *Summary, outputDir string) error {
	for _, id := range entityIDs(sum) {
		pts := make(plotter.XYs, 0)
		firePts := make(plotter.XYs, 0)
		for _, r := range sum.Records {
			if r.EntityID != id {
				continue
			}
			pts = append(pts, plotter.XY{X: r.X, Y: r.Y})
			if r.Fired {
				firePts = append(firePts, plotter.XY{X: r.X, Y: r.Y})
			}
		}
		if len(pts) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("Path: %s", id)
		p.X.Label.Text = "X (px)"
		p.Y.Label.Text = "Y (px)"

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("build path line for %s: %w", id, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)

		if len(firePts) > 0 {
			fires, err := plotter.NewScatter(firePts)
			if err != nil {
				return fmt.Errorf("build trigger markers for %s: %w", id, err)
			}
			fires.GlyphStyle.Radius = vg.Points(4)
			p.Add(fires)
			p.Legend.Add("trigger", fires)
		}

		out := filepath.Join(outputDir, fmt.Sprintf("path_%s.png", id))
		if err := p.Save(8*vg.Inch, 8*vg.Inch, out); err != nil {
			return fmt.Errorf("save path plot for %s: %w", id, err)
		}
	}
	return nil
}
