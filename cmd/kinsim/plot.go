package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/synthmotion/kinsim/spatialmath"
)

func plotSeries(path string, dt float64, values []float64) error {
	p := plot.New()
	p.Title.Text = "sampled angle trajectory"
	p.X.Label.Text = "t [s]"
	p.Y.Label.Text = "angle [rad]"

	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i) * dt
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line, plotter.NewGrid())
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func extractLink(xs [][]spatialmath.Transform, link int) []spatialmath.Transform {
	out := make([]spatialmath.Transform, len(xs))
	for i, frame := range xs {
		out[i] = frame[link]
	}
	return out
}
