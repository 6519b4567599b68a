// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package data provides a table of trait observations
// for a set of species,
// with one named column per measured variable.
// Columns are either numeric
// or categorical
// (textual states).
package data

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// A Set is a collection of trait observations.
// Rows are species
// and columns are named variables.
type Set struct {
	species []string // in first-seen order
	cols    []string

	// observed values per column;
	// a missing species key is an NA cell
	num    map[string]map[string]float64
	states map[string]map[string]string
}

// New creates a new empty data set
// with the given variable columns.
func New(cols ...string) *Set {
	s := &Set{
		cols:   slices.Clone(cols),
		num:    make(map[string]map[string]float64),
		states: make(map[string]map[string]string),
	}
	for _, c := range cols {
		s.num[c] = make(map[string]float64)
		s.states[c] = make(map[string]string)
	}
	return s
}

// Add adds a species row to the data set.
func (s *Set) Add(species string) {
	if slices.Contains(s.species, species) {
		return
	}
	s.species = append(s.species, species)
}

// SetValue sets a numeric observation
// for a species on a given column.
func (s *Set) SetValue(species, col string, v float64) error {
	if !slices.Contains(s.cols, col) {
		return fmt.Errorf("data: unknown column %q", col)
	}
	if len(s.states[col]) > 0 {
		return fmt.Errorf("data: column %q: mixing numeric and categorical values", col)
	}
	s.Add(species)
	s.num[col][species] = v
	return nil
}

// SetState sets a categorical observation
// for a species on a given column.
func (s *Set) SetState(species, col, state string) error {
	if !slices.Contains(s.cols, col) {
		return fmt.Errorf("data: unknown column %q", col)
	}
	if len(s.num[col]) > 0 {
		return fmt.Errorf("data: column %q: mixing numeric and categorical values", col)
	}
	s.Add(species)
	s.states[col][species] = state
	return nil
}

// Species returns the species of the data set,
// in the order in which they were added.
func (s *Set) Species() []string {
	return slices.Clone(s.species)
}

// Columns returns the variable columns of the data set.
func (s *Set) Columns() []string {
	return slices.Clone(s.cols)
}

// IsNumeric returns true if the given column
// stores numeric observations.
// An empty column is reported as numeric.
func (s *Set) IsNumeric(col string) bool {
	return len(s.states[col]) == 0
}

// Value returns the numeric observation
// of a species on a column,
// and false if the cell is missing.
func (s *Set) Value(species, col string) (float64, bool) {
	v, ok := s.num[col][species]
	return v, ok
}

// State returns the categorical observation
// of a species on a column,
// and false if the cell is missing.
func (s *Set) State(species, col string) (string, bool) {
	st, ok := s.states[col][species]
	return st, ok
}

// States returns the distinct states
// observed on a categorical column,
// sorted by name.
func (s *Set) States(col string) []string {
	seen := make(map[string]bool)
	for _, st := range s.states[col] {
		seen[st] = true
	}
	states := make([]string, 0, len(seen))
	for st := range seen {
		states = append(states, st)
	}
	slices.Sort(states)
	return states
}

// HasNA returns true if the species row
// has any missing cell.
func (s *Set) HasNA(species string) bool {
	for _, c := range s.cols {
		if s.IsNumeric(c) {
			if _, ok := s.num[c][species]; !ok {
				return true
			}
			continue
		}
		if _, ok := s.states[c][species]; !ok {
			return true
		}
	}
	return false
}

// Column returns the numeric observations of a column
// for the given species,
// in the given species order.
// For a categorical column
// the states are recoded as 0 and 1
// (states taken in sorted order);
// it returns an error if the column does not have
// exactly two observed states.
func (s *Set) Column(col string, species []string) ([]float64, error) {
	vs := make([]float64, len(species))
	if s.IsNumeric(col) {
		for i, sp := range species {
			v, ok := s.num[col][sp]
			if !ok {
				return nil, fmt.Errorf("data: column %q: species %q: missing value", col, sp)
			}
			vs[i] = v
		}
		return vs, nil
	}

	bin, err := s.binStates(col)
	if err != nil {
		return nil, err
	}
	for i, sp := range species {
		st, ok := s.states[col][sp]
		if !ok {
			return nil, fmt.Errorf("data: column %q: species %q: missing value", col, sp)
		}
		vs[i] = bin[st]
	}
	return vs, nil
}

// BinStates returns the 0-1 recoding
// of a two-state categorical column.
func (s *Set) binStates(col string) (map[string]float64, error) {
	states := s.States(col)
	if len(states) > 2 {
		return nil, fmt.Errorf("data: column %q: too many categories (%d)", col, len(states))
	}
	if len(states) < 2 {
		return nil, fmt.Errorf("data: column %q: only one category present", col)
	}
	return map[string]float64{states[0]: 0, states[1]: 1}, nil
}

// Standardize centers and scales
// every numeric column
// to zero mean and unit variance,
// so the coefficients of any fitted path
// are standardized.
// Columns without variance are left untouched.
func (s *Set) Standardize() {
	for _, c := range s.cols {
		if !s.IsNumeric(c) {
			continue
		}
		vs := make([]float64, 0, len(s.num[c]))
		for _, v := range s.num[c] {
			vs = append(vs, v)
		}
		if len(vs) < 2 {
			continue
		}
		m, sd := stat.MeanStdDev(vs, nil)
		if sd == 0 || math.IsNaN(sd) {
			continue
		}
		for sp, v := range s.num[c] {
			s.num[c][sp] = (v - m) / sd
		}
	}
}
