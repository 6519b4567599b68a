// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package models implements a command to print
// the candidate causal models of a phylopath project.
package models

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/lzhangss/phylopath/dag"
	"github.com/lzhangss/phylopath/project"
)

var Command = &command.Command{
	Usage: "models [--edges] <project-file>",
	Short: "print the causal models of a project",
	Long: `
Command models reads the candidate causal models from a phylopath project and
prints, for each model, its name, its number of edges, and the size of its
basis set under the consensus causal order of the set.

The argument of the command is the name of the project file.

If the flag --edges is defined, the edges of each model will also be printed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var withEdges bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&withEdges, "edges", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	ms, err := p.Models()
	if err != nil {
		return err
	}

	order, err := dag.Consensus(ms)
	if err != nil {
		return err
	}

	for _, nm := range ms.Names() {
		d := ms[nm]
		bs, err := dag.BasisSet(d, order)
		if err != nil {
			return fmt.Errorf("model %q: %v", nm, err)
		}
		fmt.Fprintf(c.Stdout(), "%s\t%d edges\tk=%d\n", nm, d.Edges(), len(bs))
		if !withEdges {
			continue
		}
		for _, to := range d.Vars() {
			for _, from := range d.Parents(to) {
				fmt.Fprintf(c.Stdout(), "\t%s -> %s\n", from, to)
			}
		}
	}
	return nil
}
