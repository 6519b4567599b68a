// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dag

import (
	"fmt"
	"slices"
	"strings"
)

// A Statement is a conditional independence claim
// implied by the structure of a DAG:
// the dependent variable is independent
// of the indicated independent variable,
// conditional on the variables of the conditioning set.
//
// A statement is tested as the regression
// "Dep ~ Ind + conditioning set",
// looking at the coefficient of the independent variable.
type Statement struct {
	Dep  string
	Ind  string
	Cond []string
}

// String returns the statement
// as a regression formula.
func (s Statement) String() string {
	var sb strings.Builder
	sb.WriteString(s.Dep)
	sb.WriteString(" ~ ")
	sb.WriteString(s.Ind)
	for _, c := range s.Cond {
		sb.WriteString(" + ")
		sb.WriteString(c)
	}
	return sb.String()
}

// Canon returns a canonical identity for the statement,
// insensitive to the order of the conditioning set.
// Two statements with the same canonical form
// are the same regression specification
// and must be fitted only once.
func (s Statement) Canon() string {
	cond := slices.Clone(s.Cond)
	slices.Sort(cond)
	c := Statement{Dep: s.Dep, Ind: s.Ind, Cond: cond}
	return c.String()
}

// BasisSet returns the minimal set
// of conditional independence statements
// implied by a DAG,
// given a total causal order of its variables.
//
// For every variable pair without a direct edge,
// the later variable of the pair
// is claimed independent of the earlier one,
// conditional on every variable prior to the later one
// except the earlier variable itself.
// Variables excluded from the graph
// (declared with a self-referencing formula)
// are skipped.
//
// A model without missing edges has an empty basis set,
// which is valid.
func BasisSet(d *DAG, order []string) ([]Statement, error) {
	if _, err := d.TopoSort(); err != nil {
		return nil, fmt.Errorf("dag: basis set: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, v := range order {
		if !d.HasVar(v) {
			return nil, fmt.Errorf("dag: basis set: unknown variable %q in order", v)
		}
		pos[v] = i
	}

	var bs []Statement
	for i, dep := range order {
		if d.IsExcluded(dep) {
			continue
		}
		for _, ind := range order[:i] {
			if d.IsExcluded(ind) {
				continue
			}
			if d.HasEdge(ind, dep) || d.HasEdge(dep, ind) {
				continue
			}

			var cond []string
			for _, c := range order[:i] {
				if c == ind || d.IsExcluded(c) {
					continue
				}
				cond = append(cond, c)
			}
			bs = append(bs, Statement{Dep: dep, Ind: ind, Cond: cond})
		}
	}
	return bs, nil
}
