// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package ppa implements phylogenetic path analysis:
// the comparison of a set of candidate causal models
// over measured traits,
// by testing the conditional independence statements
// implied by each model
// against a trait data set,
// corrected for the shared evolutionary history
// of the studied species.
package ppa

import (
	"fmt"
	"io"
	"slices"

	"github.com/js-arias/timetree"
	"github.com/lzhangss/phylopath/dag"
	"github.com/lzhangss/phylopath/data"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/regress"
)

// Param is a collection of parameters
// for a path analysis run.
type Param struct {
	// Models is the set of candidate causal models.
	Models dag.Set

	// Data is the trait data set.
	Data *data.Set

	// Tree is the phylogenetic tree of the species.
	Tree *timetree.Tree

	// Cor is the correlation structure
	// used by the regressions.
	// By default,
	// Pagel's lambda is used.
	Cor phylocov.Structure

	// Order is an explicit causal order
	// over the variables.
	// By default,
	// a consensus order is derived
	// from the model set.
	Order []string

	// CPU is the number of parallel processes
	// used for the regression fits.
	// By default,
	// it will use the available parallelism
	// minus one.
	CPU int

	// KeepNA keeps species with missing values
	// instead of dropping them.
	KeepNA bool

	// Msg is the writer used for informative,
	// non-fatal messages
	// (NA dropping and tree pruning).
	Msg io.Writer
}

// A DSep is a tested conditional independence statement
// on the d-sep table of a model.
// The fit is shared among every model
// implying the same statement.
type DSep struct {
	Statement dag.Statement
	Fit       *regress.Fit
}

// A Result holds the outcome of a path analysis run.
// It is immutable after construction.
type Result struct {
	models dag.Set
	order  []string
	dsep   map[string][]DSep
	fits   map[string]*regress.Fit // keyed by canonical statement

	data *data.Set
	tree *timetree.Tree
	st   phylocov.Structure
	n    int
	cpu  int
}

// Analyze compares a set of candidate causal models
// against a trait data set
// and a phylogenetic tree.
//
// Every distinct conditional independence statement
// across all models
// is fitted exactly once;
// statements with a continuous dependent variable
// use generalized least squares
// with the indicated correlation structure,
// and statements with a two-state categorical dependent variable
// use a phylogenetic logistic regression.
// Any fitting error aborts the run.
func Analyze(p Param) (*Result, error) {
	if len(p.Models) == 0 {
		return nil, fmt.Errorf("ppa: empty model set")
	}
	if p.Data == nil {
		return nil, fmt.Errorf("ppa: undefined data set")
	}
	if p.Tree == nil {
		return nil, fmt.Errorf("ppa: undefined tree")
	}
	st := p.Cor
	if st == nil {
		st = phylocov.Pagel()
	}

	names := p.Models.Names()
	cols := p.Data.Columns()
	for _, nm := range names {
		d := p.Models[nm]
		if !d.IsAcyclic() {
			return nil, fmt.Errorf("ppa: model %q: graph is cyclic", nm)
		}
		for _, v := range d.Vars() {
			if !slices.Contains(cols, v) {
				return nil, fmt.Errorf("ppa: model %q: variable %q not in data", nm, v)
			}
		}
	}

	ds, err := p.Data.Prune(p.Tree, !p.KeepNA, p.Msg)
	if err != nil {
		return nil, fmt.Errorf("ppa: %v", err)
	}
	ds.Standardize()

	order := p.Order
	if len(order) == 0 {
		order, err = dag.Consensus(p.Models)
		if err != nil {
			return nil, fmt.Errorf("ppa: %v", err)
		}
	}

	// basis sets and statement deduplication
	basis := make(map[string][]dag.Statement, len(names))
	var stmts []dag.Statement
	seen := make(map[string]bool)
	for _, nm := range names {
		bs, err := dag.BasisSet(p.Models[nm], order)
		if err != nil {
			return nil, fmt.Errorf("ppa: model %q: %v", nm, err)
		}
		basis[nm] = bs
		for _, s := range bs {
			if seen[s.Canon()] {
				continue
			}
			seen[s.Canon()] = true
			stmts = append(stmts, s)
		}
	}

	fits, err := fitAll(stmts, ds, p.Tree, st, p.CPU)
	if err != nil {
		return nil, err
	}

	byCanon := make(map[string]*regress.Fit, len(stmts))
	for i, s := range stmts {
		byCanon[s.Canon()] = fits[i]
	}
	dsep := make(map[string][]DSep, len(names))
	for _, nm := range names {
		tab := make([]DSep, 0, len(basis[nm]))
		for _, s := range basis[nm] {
			tab = append(tab, DSep{Statement: s, Fit: byCanon[s.Canon()]})
		}
		dsep[nm] = tab
	}

	return &Result{
		models: p.Models,
		order:  order,
		dsep:   dsep,
		fits:   byCanon,
		data:   ds,
		tree:   p.Tree,
		st:     st,
		n:      len(ds.Species()),
		cpu:    p.CPU,
	}, nil
}

// FitStatement fits a single conditional independence statement,
// dispatching on the type of the dependent variable.
func fitStatement(s dag.Statement, ds *data.Set, t *timetree.Tree, st phylocov.Structure) (*regress.Fit, error) {
	terms := append([]string{s.Ind}, s.Cond...)
	if !ds.IsNumeric(s.Dep) {
		states := ds.States(s.Dep)
		if len(states) > 2 {
			return nil, fmt.Errorf("ppa: on %q: variable %q: too many categories (%d)", s, s.Dep, len(states))
		}
		if len(states) < 2 {
			return nil, fmt.Errorf("ppa: on %q: variable %q: only one category present", s, s.Dep)
		}
		f, err := regress.Logistic(ds, t, s.Dep, terms, st)
		if err != nil {
			return nil, fmt.Errorf("ppa: on %q: %v", s, err)
		}
		return f, nil
	}
	f, err := regress.GLS(ds, t, s.Dep, terms, st)
	if err != nil {
		return nil, fmt.Errorf("ppa: on %q: %v", s, err)
	}
	return f, nil
}

// Models returns the names of the compared models.
func (r *Result) Models() []string {
	return r.models.Names()
}

// Model returns a model by its name.
func (r *Result) Model(name string) *dag.DAG {
	return r.models[name]
}

// Order returns the causal order
// used to derive the basis sets.
func (r *Result) Order() []string {
	return slices.Clone(r.order)
}

// DSep returns the d-sep table of a model:
// its basis set
// with the fitted results of each statement.
func (r *Result) DSep(name string) []DSep {
	return slices.Clone(r.dsep[name])
}

// Fits returns the number of distinct statements
// fitted on the run.
func (r *Result) Fits() int {
	return len(r.fits)
}

// Data returns the pruned and standardized data set
// used by the run.
func (r *Result) Data() *data.Set {
	return r.data
}

// Tree returns the pruned tree used by the run.
func (r *Result) Tree() *timetree.Tree {
	return r.tree
}

// N returns the number of species used by the run.
func (r *Result) N() int {
	return r.n
}
