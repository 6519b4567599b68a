// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package regress_test

import (
	"fmt"
	"testing"

	"github.com/lzhangss/phylopath/data"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/regress"
)

func TestLogistic(t *testing.T) {
	n := 40
	// a threshold response on x,
	// with a few flipped species
	// so the states overlap
	flip := map[int]bool{13: true, 16: true, 19: true, 22: true, 25: true, 28: true}

	ds := data.New("x", "hab")
	for i := 1; i <= n; i++ {
		sp := fmt.Sprintf("Sp%d", i)
		if err := ds.SetValue(sp, "x", float64(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		st := "no"
		if i > 20 {
			st = "yes"
		}
		if flip[i] {
			if st == "no" {
				st = "yes"
			} else {
				st = "no"
			}
		}
		if err := ds.SetState(sp, "hab", st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	tree := starTree(t, n)

	fit, err := regress.Logistic(ds, tree, "hab", []string{"x"}, phylocov.Pagel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fit.Method != "logistic" {
		t.Errorf("method: got %q, want %q", fit.Method, "logistic")
	}
	if fit.N != n {
		t.Errorf("observations: got %d, want %d", fit.N, n)
	}
	if len(fit.Coef) != 2 {
		t.Fatalf("coefficients: got %d, want %d", len(fit.Coef), 2)
	}

	if b := fit.Coef[1]; b <= 0 {
		t.Errorf("slope: got %.6f, want a positive value", b)
	}
	if se := fit.SE[1]; se <= 0 {
		t.Errorf("standard error: got %.6f, want a positive value", se)
	}
	if p := fit.P(); p < 0 || p > 0.1 {
		t.Errorf("p-value: got %.6f, want a significant value", p)
	}
	if fit.Lower[1] > fit.Coef[1] || fit.Upper[1] < fit.Coef[1] {
		t.Errorf("confidence interval [%.6f, %.6f]: does not contain the estimate %.6f", fit.Lower[1], fit.Upper[1], fit.Coef[1])
	}
	if fit.Phylo < 0 || fit.Phylo > 1 {
		t.Errorf("signal: got %.6f, want a value in [0, 1]", fit.Phylo)
	}
}

func TestLogisticIndependent(t *testing.T) {
	n := 40
	ds := data.New("x", "hab")
	for i := 1; i <= n; i++ {
		sp := fmt.Sprintf("Sp%d", i)
		if err := ds.SetValue(sp, "x", float64(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// alternating states,
		// unrelated to the linear trend of x
		st := "no"
		if i%2 == 0 {
			st = "yes"
		}
		if err := ds.SetState(sp, "hab", st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	tree := starTree(t, n)

	fit, err := regress.Logistic(ds, tree, "hab", []string{"x"}, phylocov.Pagel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := fit.P(); p < 0.05 {
		t.Errorf("p-value: got %.6f, want a non-significant value", p)
	}
}

func TestLogisticErrors(t *testing.T) {
	ds := data.New("x", "hab")
	states := []string{"aquatic", "terrestrial", "arboreal", "aquatic", "terrestrial"}
	for i := 1; i <= 5; i++ {
		sp := fmt.Sprintf("Sp%d", i)
		if err := ds.SetValue(sp, "x", float64(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ds.SetState(sp, "hab", states[i-1]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	tree := starTree(t, 5)

	if _, err := regress.Logistic(ds, tree, "hab", []string{"x"}, phylocov.Pagel()); err == nil {
		t.Errorf("expecting error on a three state response")
	}
}
