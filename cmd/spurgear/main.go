// Command spurgear builds meshing involute spur gears on a set of pitch
// circles and writes them as a single STL assembly.
//
// Usage:
//
//	spurgear -job train.json [-o gears.stl] [-png preview.png] [-plot profile.svg]
//
// The job file holds a shared gear definition and the pitch circles:
//
//	{
//	  "spec": {"module": 1, "thickness": 5, "holeDiameter": 4, "rootFilletRadius": 0.2},
//	  "circles": [
//	    {"center": [0, 0, 0], "radius": 10},
//	    {"center": [15, 0, 0], "radius": 5}
//	  ]
//	}
//
// Gears that fail are logged and skipped. spurgear exits with status 1 if
// any gear failed, after writing the ones that succeeded.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/soypat/gear"
	"github.com/soypat/gear/helpers/matter"
	"github.com/soypat/gear/meshcad"
	"github.com/soypat/gear/render"
)

type config struct {
	job    string
	output string
	png    string
	plot   string
	cells  int
	pla    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.job, "job", "", "JSON job file with the gear spec and pitch circles")
	flag.StringVar(&cfg.output, "o", "gears.stl", "output STL file")
	flag.StringVar(&cfg.png, "png", "", "write a PNG preview of the output to this file")
	flag.StringVar(&cfg.plot, "plot", "", "plot tooth profiles to this file (.png, .svg, .pdf)")
	flag.IntVar(&cfg.cells, "cells", meshcad.DefaultCells, "marching cubes cells along the longest axis of a gear")
	flag.BoolVar(&cfg.pla, "pla", false, "compensate the hole and gear size for PLA shrinkage")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.job == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -job <job.json> [options]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	failed, err := run(cfg, log)
	if err != nil {
		log.Error("spurgear failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		log.Warn("some gears were not built", "failed", failed)
		os.Exit(1)
	}
}

// run executes the job and returns the number of gears that failed.
func run(cfg config, log *slog.Logger) (failed int, err error) {
	job, err := loadJob(cfg.job)
	if err != nil {
		return 0, err
	}
	spec, circles := job.Inputs()
	if cfg.pla && spec.HoleDiameter > 0 {
		hole := spec.HoleDiameter
		spec.HoleDiameter = matter.PLA.InternalDimScale(hole)
		log.Debug("hole compensated for PLA", "hole", hole, "modeled", spec.HoleDiameter)
	}
	batch, err := gear.ComputeBatch(circles, spec)
	if err != nil {
		return 0, err
	}
	for _, f := range batch.Failures {
		log.Error("gear skipped", "index", f.Index, "error", f.Err)
	}
	failed = len(batch.Failures)

	m := meshcad.New(cfg.cells)
	results, _ := gear.Builder{Modeler: m, Logger: log}.Build(batch)
	var model []render.Triangle3
	built := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		comp, ok := res.Component.(*meshcad.Component)
		if !ok {
			return failed, fmt.Errorf("gear %d: unexpected component type %T", res.Index, res.Component)
		}
		tris, err := comp.Triangles()
		if err != nil {
			return failed, fmt.Errorf("gear %d: %w", res.Index, err)
		}
		if cfg.pla {
			// Scale each gear about its own axis so center distances hold.
			axis := batch.Gears[i].Target.Center
			tris = matter.PLA.ScaleAbout(tris, axis)
			log.Debug("gear scaled for PLA", "index", res.Index, "axis", axis, "center", matter.Center(tris))
		}
		model = append(model, tris...)
		built++
	}
	if len(model) == 0 {
		return failed, errors.New("no gear was built")
	}
	if err := render.CreateSTL(cfg.output, render.NewMeshRenderer(model)); err != nil {
		return failed, err
	}
	info, err := os.Stat(cfg.output)
	if err != nil {
		return failed, err
	}
	log.Info("wrote STL", "path", cfg.output, "gears", built,
		"triangles", humanize.Comma(int64(len(model))), "size", humanize.Bytes(uint64(info.Size())))

	if cfg.png != "" {
		if err := stlToPNG(cfg.output, cfg.png, defaultView); err != nil {
			return failed, fmt.Errorf("preview: %w", err)
		}
		log.Info("wrote preview", "path", cfg.png)
	}
	if cfg.plot != "" {
		if err := plotProfiles(batch.Gears, cfg.plot); err != nil {
			return failed, fmt.Errorf("plot: %w", err)
		}
		log.Info("wrote profile plot", "path", cfg.plot)
	}
	return failed, nil
}
