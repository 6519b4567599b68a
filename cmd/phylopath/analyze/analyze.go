// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package analyze implements a command to compare
// the candidate causal models of a phylopath project.
package analyze

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/js-arias/command"
	"github.com/lzhangss/phylopath/infer/ppa"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/project"
)

var Command = &command.Command{
	Usage: `analyze [--cor <structure>] [--order <var>,<var>,...]
	[--tree <tree>] [--keep-na] [--cpu <number>]
	[-o|--output <file>] <project-file>`,
	Short: "compare the causal models of a project",
	Long: `
Command analyze reads the candidate causal models, the trait data, and the
phylogenetic tree from a phylopath project, tests the conditional
independence statements implied by each model, and prints the resulting model
ranking as a TSV table.

The argument of the command is the name of the project file.

By default, the regressions use the Pagel's lambda correlation structure. Use
the flag --cor to set a different structure; valid values are:

	pagel     Pagel's lambda (the default)
	brownian  plain Brownian motion

By default, the causal order of the variables is a consensus derived from the
model set. Use the flag --order to set an explicit order, as a comma
separated list of variable names, from cause to effect.

By default, the first tree of the tree file will be used. Use the flag --tree
to define a different tree.

By default, species with missing values are dropped before the analysis. Use
the flag --keep-na to keep them.

By default, the regression fits will use the available parallelism minus one.
Set the flag --cpu to use a different number of parallel processes.

By default, the ranking is printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var corFlag string
var orderFlag string
var treeName string
var keepNA bool
var numCPU int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&corFlag, "cor", "pagel", "")
	c.Flags().StringVar(&orderFlag, "order", "", "")
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

	res, err := analyzeProject(c, args[0])
	if err != nil {
		return err
	}

	w := c.Stdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := res.Summary().TSV(w); err != nil {
		return fmt.Errorf("while writing summary: %v", err)
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

	var order []string
	if orderFlag != "" {
		for _, v := range strings.Split(orderFlag, ",") {
			order = append(order, strings.TrimSpace(v))
		}
	}

	return ppa.Analyze(ppa.Param{
		Models: ms,
		Data:   ds,
		Tree:   t,
		Cor:    st,
		Order:  order,
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
