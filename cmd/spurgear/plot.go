package main

import (
	"math"

	"github.com/soypat/gear"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const plotSize = 12 * vg.Centimeter

// plotProfiles saves the tooth outline and pitch circle of every gear to
// path. The format follows the file extension.
func plotProfiles(gears []gear.Gear, path string) error {
	p := plot.New()
	p.Title.Text = "Tooth profiles"
	p.X.Label.Text = "x [mm]"
	p.Y.Label.Text = "y [mm]"
	p.Add(plotter.NewGrid())
	for i, g := range gears {
		loop := g.Profile.Polyline()
		xys := make(plotter.XYs, len(loop)+1)
		for j, v := range loop {
			xys[j].X, xys[j].Y = v.X, v.Y
		}
		xys[len(loop)] = xys[0]
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(g.Name(), l)

		// Pitch circle across one tooth pitch.
		const arcPoints = 33
		rp, half := g.Radii.PitchRadius(), math.Pi/float64(g.Spec.Teeth)
		arc := make(plotter.XYs, arcPoints)
		for j := range arc {
			a := -half + 2*half*float64(j)/(arcPoints-1)
			arc[j].X, arc[j].Y = rp*math.Cos(a), rp*math.Sin(a)
		}
		pl, err := plotter.NewLine(arc)
		if err != nil {
			return err
		}
		pl.Color = l.Color
		pl.Dashes = plotutil.Dashes(1)
		p.Add(pl)
	}
	p.Legend.Top = true
	return p.Save(plotSize, plotSize, path)
}
