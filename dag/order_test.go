// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dag_test

import (
	"reflect"
	"testing"

	"github.com/lzhangss/phylopath/dag"
)

func mustDAG(t testing.TB, formulas ...string) *dag.DAG {
	t.Helper()

	d, err := dag.New(formulas...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestConsensus(t *testing.T) {
	s := dag.Set{
		"one": mustDAG(t, "z ~ y", "y ~ x"),
		"two": mustDAG(t, "z ~ x", "y ~ y"),
	}

	order, err := dag.Consensus(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestConsensusVote(t *testing.T) {
	// The union of the models is cyclic:
	// model one has x -> y
	// and model two has y -> x,
	// but both agree that z is last.
	s := dag.Set{
		"one":   mustDAG(t, "y ~ x", "z ~ y"),
		"two":   mustDAG(t, "x ~ y", "z ~ x"),
		"three": mustDAG(t, "y ~ x", "z ~ x"),
	}

	order, err := dag.Consensus(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestConsensusError(t *testing.T) {
	s := dag.Set{
		"one": mustDAG(t, "z ~ y", "y ~ x"),
		"two": mustDAG(t, "z ~ w"),
	}
	if _, err := dag.Consensus(s); err == nil {
		t.Errorf("expecting error on inconsistent variable sets")
	}

	s = dag.Set{}
	if _, err := dag.Consensus(s); err == nil {
		t.Errorf("expecting error on an empty set")
	}
}
