// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ppa

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/lzhangss/phylopath/dag"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Fitted is a causal graph
// augmented with a standardized path coefficient,
// a standard error,
// and 95% confidence bounds
// on every edge.
//
// A graph produced by model averaging
// may contain cycles:
// it represents the evidence
// across competing models,
// not a single causal claim.
type Fitted struct {
	vars  []string
	coef  map[string]map[string]float64
	se    map[string]map[string]float64
	lower map[string]map[string]float64
	upper map[string]map[string]float64
}

func newFitted(vars []string) *Fitted {
	f := &Fitted{
		vars:  vars,
		coef:  make(map[string]map[string]float64),
		se:    make(map[string]map[string]float64),
		lower: make(map[string]map[string]float64),
		upper: make(map[string]map[string]float64),
	}
	for _, v := range vars {
		f.coef[v] = make(map[string]float64)
		f.se[v] = make(map[string]float64)
		f.lower[v] = make(map[string]float64)
		f.upper[v] = make(map[string]float64)
	}
	return f
}

func (f *Fitted) setPath(from, to string, coef, se, lower, upper float64) {
	f.coef[from][to] = coef
	f.se[from][to] = se
	f.lower[from][to] = lower
	f.upper[from][to] = upper
}

// Vars returns the variables of the graph.
func (f *Fitted) Vars() []string {
	vs := make([]string, len(f.vars))
	copy(vs, f.vars)
	return vs
}

// HasPath returns true if there is a path
// from a parent variable
// to a child variable.
func (f *Fitted) HasPath(from, to string) bool {
	_, ok := f.coef[from][to]
	return ok
}

// Coef returns the standardized path coefficient
// of an edge.
func (f *Fitted) Coef(from, to string) float64 {
	return f.coef[from][to]
}

// SE returns the standard error
// of the path coefficient of an edge.
func (f *Fitted) SE(from, to string) float64 {
	return f.se[from][to]
}

// CI returns the 95% confidence bounds
// of the path coefficient of an edge.
func (f *Fitted) CI(from, to string) (lower, upper float64) {
	return f.lower[from][to], f.upper[from][to]
}

// Best re-fits the full structural equation set
// of the top ranked model
// (the model with the lowest CICc)
// and returns its standardized path coefficients.
func (r *Result) Best() (*Fitted, error) {
	sum := r.Summary()
	return r.Choice(sum[0].Name)
}

// Choice re-fits the full structural equation set
// of a model given by its name:
// every edge becomes one regression
// of a child variable on all of its parents,
// phylogenetically corrected.
// It returns an error if the model is not in the set.
func (r *Result) Choice(name string) (*Fitted, error) {
	d, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("ppa: unknown model %q", name)
	}
	return r.fitDAG(d)
}

func (r *Result) fitDAG(d *dag.DAG) (*Fitted, error) {
	f := newFitted(d.Vars())
	for _, child := range d.Vars() {
		parents := d.Parents(child)
		if len(parents) == 0 {
			continue
		}
		s := dag.Statement{Dep: child, Ind: parents[0], Cond: parents[1:]}
		fit, err := fitStatement(s, r.data, r.tree, r.st)
		if err != nil {
			return nil, err
		}
		for j, p := range parents {
			f.setPath(p, child, fit.Coef[j+1], fit.SE[j+1], fit.Lower[j+1], fit.Upper[j+1])
		}
	}
	return f, nil
}

// AverageParam is a collection of parameters
// for model averaging.
type AverageParam struct {
	// CutOff is the maximum CICc difference
	// with the best model
	// for a model to be included in the average.
	// By default,
	// models with a difference below 2 are included;
	// use math.Inf(1) to include every model.
	CutOff float64

	// Full includes models without a given edge
	// in the average of that edge,
	// voting a coefficient and variance of zero,
	// which shrinks inconsistent edges toward zero.
	// By default,
	// only models containing an edge
	// vote on its average.
	Full bool
}

// Average fits every model
// within the CICc cut-off
// and combines their path coefficients,
// weighted by the model weights
// re-normalized over the selected models.
// The averaged standard error includes
// the among-model variance of the coefficients.
func (r *Result) Average(p AverageParam) (*Fitted, error) {
	cutOff := p.CutOff
	if cutOff == 0 {
		cutOff = 2
	}

	sum := r.Summary()
	var sel []ModelSum
	var wSum float64
	for _, m := range sum {
		if m.Delta > cutOff {
			continue
		}
		sel = append(sel, m)
		wSum += m.Weight
	}

	weights := make([]float64, len(sel))
	fitted := make([]*Fitted, len(sel))
	for i, m := range sel {
		weights[i] = m.Weight / wSum
		f, err := r.Choice(m.Name)
		if err != nil {
			return nil, err
		}
		fitted[i] = f
	}

	vars := fitted[0].Vars()
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	q := norm.Quantile(0.975)

	avg := newFitted(vars)
	for _, from := range vars {
		for _, to := range vars {
			var present bool
			for _, f := range fitted {
				if f.HasPath(from, to) {
					present = true
					break
				}
			}
			if !present {
				continue
			}

			var b, ws float64
			for i, f := range fitted {
				if !f.HasPath(from, to) {
					continue
				}
				b += weights[i] * f.Coef(from, to)
				ws += weights[i]
			}
			if p.Full {
				// absent models vote zero
				ws = 1
			}
			b /= ws

			var v float64
			for i, f := range fitted {
				var c, se float64
				if f.HasPath(from, to) {
					c = f.Coef(from, to)
					se = f.SE(from, to)
				} else if !p.Full {
					continue
				}
				v += weights[i] / ws * (se*se + (c-b)*(c-b))
			}
			se := math.Sqrt(v)
			avg.setPath(from, to, b, se, b-q*se, b+q*se)
		}
	}
	return avg, nil
}

// TSV writes the fitted graph
// as a TSV edge list.
func (f *Fitted) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"from", "to", "coef", "se", "lower", "upper"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}
	for _, from := range f.vars {
		for _, to := range f.vars {
			if !f.HasPath(from, to) {
				continue
			}
			lo, up := f.CI(from, to)
			row := []string{
				from,
				to,
				strconv.FormatFloat(f.Coef(from, to), 'f', 6, 64),
				strconv.FormatFloat(f.SE(from, to), 'f', 6, 64),
				strconv.FormatFloat(lo, 'f', 6, 64),
				strconv.FormatFloat(up, 'f', 6, 64),
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
