// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dag_test

import (
	"reflect"
	"testing"

	"github.com/lzhangss/phylopath/dag"
)

func TestNew(t *testing.T) {
	d, err := dag.New(
		"RS ~ DD",
		"DD ~ NL",
		"NL ~ BM + LS",
		"OC ~ OC",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantVars := []string{"RS", "DD", "NL", "BM", "LS", "OC"}
	if vs := d.Vars(); !reflect.DeepEqual(vs, wantVars) {
		t.Errorf("vars: got %v, want %v", vs, wantVars)
	}
	if e := d.Edges(); e != 4 {
		t.Errorf("edges: got %d, want %d", e, 4)
	}

	edges := []struct {
		from, to string
	}{
		{"DD", "RS"},
		{"NL", "DD"},
		{"BM", "NL"},
		{"LS", "NL"},
	}
	for _, e := range edges {
		if !d.HasEdge(e.from, e.to) {
			t.Errorf("edge %s -> %s: not found", e.from, e.to)
		}
		if d.HasEdge(e.to, e.from) {
			t.Errorf("edge %s -> %s: reversed edge found", e.from, e.to)
		}
	}

	if ps := d.Parents("NL"); !reflect.DeepEqual(ps, []string{"BM", "LS"}) {
		t.Errorf("parents of NL: got %v", ps)
	}
	if !d.IsExcluded("OC") {
		t.Errorf("variable OC: expecting excluded")
	}
	if d.IsExcluded("RS") {
		t.Errorf("variable RS: unexpected exclusion")
	}
	if d.HasEdge("OC", "OC") {
		t.Errorf("variable OC: unexpected self edge")
	}
}

func TestNewErrors(t *testing.T) {
	bad := []struct {
		name     string
		formulas []string
	}{
		{"no formulas", nil},
		{"no tilde", []string{"x y"}},
		{"empty response", []string{" ~ y"}},
		{"empty term", []string{"x ~ y + "}},
		{"self and parents", []string{"x ~ x + y"}},
	}
	for _, b := range bad {
		if _, err := dag.New(b.formulas...); err == nil {
			t.Errorf("%s: expecting error", b.name)
		}
	}
}

func TestTopoSort(t *testing.T) {
	d, err := dag.New(
		"RS ~ DD",
		"DD ~ NL",
		"NL ~ BM",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsAcyclic() {
		t.Fatalf("expecting an acyclic graph")
	}

	order, err := d.TopoSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	for _, to := range d.Vars() {
		for _, from := range d.Parents(to) {
			if pos[from] >= pos[to] {
				t.Errorf("order %v: %s before %s", order, to, from)
			}
		}
	}

	// the sort is deterministic
	for range 10 {
		o, err := d.TopoSort()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(o, order) {
			t.Errorf("order: got %v, want %v", o, order)
		}
	}
}

func TestCyclic(t *testing.T) {
	d, err := dag.New(
		"x ~ y",
		"y ~ z",
		"z ~ x",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IsAcyclic() {
		t.Errorf("expecting a cyclic graph")
	}
	if _, err := d.TopoSort(); err == nil {
		t.Errorf("expecting an error on a cyclic sort")
	}
}

func TestReachable(t *testing.T) {
	d, err := dag.New(
		"RS ~ DD",
		"DD ~ NL",
		"NL ~ BM",
		"LS ~ LS",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !d.Reachable("BM", "RS") {
		t.Errorf("BM -> RS: expecting a directed path")
	}
	if d.Reachable("RS", "BM") {
		t.Errorf("RS -> BM: unexpected directed path")
	}
	if d.Reachable("LS", "RS") {
		t.Errorf("LS -> RS: unexpected directed path")
	}
}
