// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dag provides directed acyclic graphs
// used as causal hypotheses
// among a set of measured traits,
// and the derivation of the conditional independence statements
// (the d-separation basis set)
// implied by each graph.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

// A DAG is a directed graph
// over a set of named variables.
// Each edge goes from a parent variable
// to one of its children.
//
// A DAG used as a causal model must be acyclic,
// but a graph produced by model averaging
// is allowed to contain cycles.
type DAG struct {
	vars     []string // in first-declaration order
	parents  map[string]map[string]bool
	excluded map[string]bool
}

// New creates a graph from a list of regression-style formulas
// of the form "child ~ parent + parent".
// A variable can be declared without any edge
// using a self-referencing formula ("x ~ x"),
// which also excludes the variable
// from any d-separation test.
func New(formulas ...string) (*DAG, error) {
	d := &DAG{
		parents:  make(map[string]map[string]bool),
		excluded: make(map[string]bool),
	}
	if len(formulas) == 0 {
		return nil, fmt.Errorf("dag: expecting at least one formula")
	}

	for _, f := range formulas {
		child, pars, err := parseFormula(f)
		if err != nil {
			return nil, err
		}
		d.addVar(child)
		if len(pars) == 1 && pars[0] == child {
			d.excluded[child] = true
			continue
		}
		for _, p := range pars {
			if p == child {
				return nil, fmt.Errorf("dag: on formula %q: self reference mixed with parents", f)
			}
			d.addVar(p)
			d.parents[child][p] = true
		}
	}
	return d, nil
}

func parseFormula(f string) (child string, parents []string, err error) {
	parts := strings.Split(f, "~")
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("dag: invalid formula %q", f)
	}
	child = strings.TrimSpace(parts[0])
	if child == "" {
		return "", nil, fmt.Errorf("dag: invalid formula %q: empty response", f)
	}

	for _, p := range strings.Split(parts[1], "+") {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", nil, fmt.Errorf("dag: invalid formula %q: empty term", f)
		}
		parents = append(parents, p)
	}
	return child, parents, nil
}

func (d *DAG) addVar(v string) {
	if _, ok := d.parents[v]; ok {
		return
	}
	d.vars = append(d.vars, v)
	d.parents[v] = make(map[string]bool)
}

// Vars returns the variables of the graph
// in first-declaration order.
func (d *DAG) Vars() []string {
	return slices.Clone(d.vars)
}

// HasVar returns true if the given variable
// is defined in the graph.
func (d *DAG) HasVar(v string) bool {
	_, ok := d.parents[v]
	return ok
}

// HasEdge returns true if there is an edge
// from a parent variable
// to a child variable.
func (d *DAG) HasEdge(from, to string) bool {
	return d.parents[to][from]
}

// Parents returns the parent variables
// of the given variable,
// sorted by name.
func (d *DAG) Parents(v string) []string {
	ps := make([]string, 0, len(d.parents[v]))
	for p := range d.parents[v] {
		ps = append(ps, p)
	}
	slices.Sort(ps)
	return ps
}

// Edges returns the number of edges in the graph.
func (d *DAG) Edges() int {
	var n int
	for _, ps := range d.parents {
		n += len(ps)
	}
	return n
}

// IsExcluded returns true if the variable was declared
// with a self-referencing formula,
// so it must be skipped on any d-separation test.
func (d *DAG) IsExcluded(v string) bool {
	return d.excluded[v]
}

// IsAcyclic returns true if the graph
// does not contain any directed cycle.
func (d *DAG) IsAcyclic() bool {
	_, err := d.TopoSort()
	return err == nil
}

// TopoSort returns the variables in a topological order:
// every parent appears before all of its children.
// The order is deterministic:
// among variables free to be placed,
// the first declared is picked first.
// It returns an error if the graph contains a cycle.
func (d *DAG) TopoSort() ([]string, error) {
	pending := make(map[string]int, len(d.vars))
	for _, v := range d.vars {
		pending[v] = len(d.parents[v])
	}

	order := make([]string, 0, len(d.vars))
	placed := make(map[string]bool, len(d.vars))
	for len(order) < len(d.vars) {
		next := ""
		for _, v := range d.vars {
			if placed[v] {
				continue
			}
			if pending[v] == 0 {
				next = v
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("dag: graph is cyclic")
		}
		placed[next] = true
		order = append(order, next)
		for _, v := range d.vars {
			if d.parents[v][next] {
				pending[v]--
			}
		}
	}
	return order, nil
}

// Reachable returns true if there is a directed path
// from a source variable
// to a destination variable.
func (d *DAG) Reachable(from, to string) bool {
	if from == to {
		return false
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range d.vars {
			if !d.parents[c][v] || seen[c] {
				continue
			}
			if c == to {
				return true
			}
			seen[c] = true
			stack = append(stack, c)
		}
	}
	return false
}

// A Set is a collection of named candidate models,
// all defined over the same set of variables.
// The model name is the identifier
// used on every analysis result.
type Set map[string]*DAG

// Names returns the model names,
// sorted alphabetically.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
