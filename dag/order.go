// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dag

import (
	"fmt"
	"slices"
)

// Consensus derives a single causal order
// over the variables of a model set.
//
// If the union of all model edges is acyclic,
// the topological order of the union is used.
// Otherwise the order is built by a pairwise majority vote:
// for every variable pair,
// each model votes using directed-path reachability,
// and variables are placed by picking,
// among the unplaced ones,
// the variable with the most pairwise wins.
// Ties are broken by the first-appearance order
// of the variables in the set
// (taking models by name).
//
// It returns an error if the models are not defined
// over the same variable set.
func Consensus(s Set) ([]string, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("dag: empty model set")
	}
	names := s.Names()

	vars, err := sharedVars(s, names)
	if err != nil {
		return nil, err
	}

	// the union of all model edges
	fs := make([]string, 0, len(vars))
	for _, v := range vars {
		f := v + " ~ " + v
		pars := make(map[string]bool)
		for _, n := range names {
			for _, p := range s[n].Parents(v) {
				pars[p] = true
			}
		}
		if len(pars) > 0 {
			ps := make([]string, 0, len(pars))
			for p := range pars {
				ps = append(ps, p)
			}
			slices.Sort(ps)
			f = v + " ~ "
			for i, p := range ps {
				if i > 0 {
					f += " + "
				}
				f += p
			}
		}
		fs = append(fs, f)
	}
	union, err := New(fs...)
	if err != nil {
		return nil, err
	}
	if order, err := union.TopoSort(); err == nil {
		return order, nil
	}

	// The union is cyclic:
	// majority vote on per-model reachability.
	wins := make(map[string]int, len(vars))
	for i, a := range vars {
		for _, b := range vars[i+1:] {
			var ab, ba int
			for _, n := range names {
				d := s[n]
				if d.Reachable(a, b) {
					ab++
				}
				if d.Reachable(b, a) {
					ba++
				}
			}
			if ab > ba {
				wins[a]++
			}
			if ba > ab {
				wins[b]++
			}
		}
	}

	order := make([]string, 0, len(vars))
	placed := make(map[string]bool, len(vars))
	for len(order) < len(vars) {
		best := ""
		for _, v := range vars {
			if placed[v] {
				continue
			}
			if best == "" || wins[v] > wins[best] {
				best = v
			}
		}
		placed[best] = true
		order = append(order, best)
	}
	return order, nil
}

// SharedVars returns the variables common to all models,
// in first-appearance order,
// or an error if any model differs.
func sharedVars(s Set, names []string) ([]string, error) {
	first := s[names[0]]
	vars := first.Vars()
	for _, n := range names[1:] {
		d := s[n]
		if len(d.Vars()) != len(vars) {
			return nil, fmt.Errorf("dag: model %q: inconsistent variable set", n)
		}
		for _, v := range vars {
			if !d.HasVar(v) {
				return nil, fmt.Errorf("dag: model %q: unknown variable %q", n, v)
			}
		}
	}
	return vars, nil
}
