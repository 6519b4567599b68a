// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package coef implements a command to extract
// the standardized path coefficients
// of a fitted or averaged causal model.
package coef

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/js-arias/command"
	"github.com/lzhangss/phylopath/infer/ppa"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/project"
)

var Command = &command.Command{
	Usage: `coef [--model <name>] [--average] [--cutoff <delta>] [--full]
	[--cor <structure>] [--tree <tree>] [--keep-na] [--cpu <number>]
	[-o|--output <file>] <project-file>`,
	Short: "extract the path coefficients of a model",
	Long: `
Command coef runs the path analysis of a phylopath project, re-fits a causal
model as a standardized structural equation set, and prints its path
coefficients, with standard errors and 95% confidence intervals, as a TSV
edge list.

The argument of the command is the name of the project file.

By default, the best ranked model (the model with the lowest CICc) is used.
Use the flag --model to extract the coefficients of any model of the project,
by its name.

If the flag --average is defined, the coefficients will be averaged across
the best ranked models, weighted by the model weights. By default, models
with a CICc difference below 2 are included; use the flag --cutoff to set a
different cut-off (a negative value includes every model). By default, only
the models containing an edge vote on the average of that edge; if the flag
--full is defined, models without the edge vote a coefficient of zero,
shrinking inconsistent edges toward zero. An averaged graph is allowed to
contain cycles.

The flags --cor, --tree, --keep-na, and --cpu are as in the analyze command.

By default, the coefficients are printed in the standard output. Use the flag
--output, or -o, to define an output file.
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

	f, err := extract(res)
	if err != nil {
		return err
	}

	w := c.Stdout()
	if output != "" {
		out, err := os.Create(output)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}
	if err := f.TSV(w); err != nil {
		return fmt.Errorf("while writing coefficients: %v", err)
	}
	return nil
}

func extract(res *ppa.Result) (*ppa.Fitted, error) {
	if average {
		co := cutOff
		if co < 0 {
			co = math.Inf(1)
		}
		return res.Average(ppa.AverageParam{CutOff: co, Full: full})
	}
	if modelName != "" {
		return res.Choice(modelName)
	}
	return res.Best()
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
