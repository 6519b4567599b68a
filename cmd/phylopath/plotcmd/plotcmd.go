// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plotcmd implements a command to plot
// the path coefficients of a fitted or averaged causal model
// with their confidence intervals.
package plotcmd

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/js-arias/blind"
	"github.com/js-arias/command"
	"github.com/lzhangss/phylopath/infer/ppa"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/project"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var Command = &command.Command{
	Usage: `plot [--model <name>] [--average] [--cutoff <delta>] [--full]
	[--cor <structure>] [--tree <tree>] [--keep-na] [--cpu <number>]
	[-o|--output <file>] <project-file>`,
	Short: "plot the path coefficients of a model",
	Long: `
Command plot runs the path analysis of a phylopath project, extracts the
standardized path coefficients of a model, and plots each coefficient with
its 95% confidence interval. Paths whose interval excludes zero are
highlighted.

The argument of the command is the name of the project file.

The flags --model, --average, --cutoff, and --full select the model to plot,
as in the coef command; by default the best ranked model is used. The flags
--cor, --tree, --keep-na, and --cpu are as in the analyze command.

The plot is saved as a PNG file. By default, the output file name is the name
of the project file with a "-coef.png" suffix; use the flag --output, or -o,
to set a different file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modelName string
var average bool
var cutOff float64
var full bool
var corFlag string
var treeName string
var keepNA bool
var numCPU int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modelName, "model", "", "")
	c.Flags().BoolVar(&average, "average", false, "")
	c.Flags().Float64Var(&cutOff, "cutoff", 2, "")
	c.Flags().BoolVar(&full, "full", false, "")
	c.Flags().StringVar(&corFlag, "cor", "pagel", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&keepNA, "keep-na", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0)-1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if average && modelName != "" {
		return c.UsageError("flags --average and --model are incompatible")
	}

	res, err := analyzeProject(c, args[0])
	if err != nil {
		return err
	}

	var f *ppa.Fitted
	switch {
	case average:
		co := cutOff
		if co < 0 {
			co = math.Inf(1)
		}
		f, err = res.Average(ppa.AverageParam{CutOff: co, Full: full})
	case modelName != "":
		f, err = res.Choice(modelName)
	default:
		f, err = res.Best()
	}
	if err != nil {
		return err
	}

	if output == "" {
		output = args[0] + "-coef.png"
	}
	return plotCoef(f, output)
}

// A pathCoef is a single path of the plot.
type pathCoef struct {
	label        string
	coef         float64
	lower, upper float64
}

// A coefPlot plots the path coefficients
// with their confidence intervals,
// one path per line.
type coefPlot struct {
	paths []pathCoef
}

// DataRange implements the plot.DataRanger interface.
func (cp *coefPlot) DataRange() (xMin, xMax, yMin, yMax float64) {
	xMin, xMax = 0, 0
	for _, p := range cp.paths {
		if p.lower < xMin {
			xMin = p.lower
		}
		if p.upper > xMax {
			xMax = p.upper
		}
	}
	return xMin, xMax, -1, float64(len(cp.paths))
}

// Plot implements the plot.Plotter interface.
func (cp *coefPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	// zero reference line
	style := plotter.DefaultLineStyle
	style.Color = blind.Gradient(0.5)
	c.SetLineStyle(style)
	var zero vg.Path
	zero.Move(vg.Point{X: trX(0), Y: trY(-1)})
	zero.Line(vg.Point{X: trX(0), Y: trY(float64(len(cp.paths)))})
	c.Stroke(zero)

	for i, p := range cp.paths {
		y := trY(float64(i))
		col := blind.Sequential(blind.Iridescent, 0.75)
		if p.lower > 0 || p.upper < 0 {
			col = blind.Sequential(blind.Iridescent, 0.25)
		}
		style.Color = col
		c.SetLineStyle(style)

		var ln vg.Path
		ln.Move(vg.Point{X: trX(p.lower), Y: y})
		ln.Line(vg.Point{X: trX(p.upper), Y: y})
		c.Stroke(ln)

		c.SetColor(col)
		var pt vg.Path
		x := trX(p.coef)
		pt.Move(vg.Point{X: x + 2, Y: y})
		pt.Arc(vg.Point{X: x, Y: y}, 2, 0, 2*math.Pi)
		pt.Close()
		c.Fill(pt)
	}
}

// PlotCoef saves the coefficient plot of a fitted graph.
func plotCoef(f *ppa.Fitted, name string) error {
	cp := &coefPlot{}
	var labels []string
	vars := f.Vars()
	for _, from := range vars {
		for _, to := range vars {
			if !f.HasPath(from, to) {
				continue
			}
			lo, up := f.CI(from, to)
			lb := from + " -> " + to
			cp.paths = append(cp.paths, pathCoef{
				label: lb,
				coef:  f.Coef(from, to),
				lower: lo,
				upper: up,
			})
			labels = append(labels, lb)
		}
	}
	if len(cp.paths) == 0 {
		return fmt.Errorf("graph without any path to plot")
	}

	p := plot.New()
	p.X.Label.Text = "standardized coefficient"
	p.NominalY(labels...)
	p.Add(cp)

	h := vg.Length(len(labels))*0.4*vg.Inch + vg.Inch
	if err := p.Save(6*vg.Inch, h, name); err != nil {
		return fmt.Errorf("while saving plot %q: %v", name, err)
	}
	return nil
}

// AnalyzeProject reads the datasets of a project
// and runs the path analysis.
func analyzeProject(c *command.Command, name string) (*ppa.Result, error) {
	p, err := project.Read(name)
	if err != nil {
		return nil, err
	}

	ms, err := p.Models()
	if err != nil {
		return nil, err
	}
	ds, err := p.Traits()
	if err != nil {
		return nil, err
	}
	tc, err := p.Trees()
	if err != nil {
		return nil, err
	}
	if treeName == "" {
		treeName = tc.Names()[0]
	}
	t := tc.Tree(treeName)
	if t == nil {
		return nil, fmt.Errorf("tree %q not in project %q", treeName, name)
	}

	st, err := pickStructure(corFlag)
	if err != nil {
		return nil, err
	}

	return ppa.Analyze(ppa.Param{
		Models: ms,
		Data:   ds,
		Tree:   t,
		Cor:    st,
		CPU:    numCPU,
		KeepNA: keepNA,
		Msg:    c.Stderr(),
	})
}

// PickStructure returns a correlation structure
// by its name.
func pickStructure(name string) (phylocov.Structure, error) {
	switch strings.ToLower(name) {
	case "pagel":
		return phylocov.Pagel(), nil
	case "brownian":
		return phylocov.Brownian(), nil
	}
	return nil, fmt.Errorf("unknown correlation structure %q", name)
}
