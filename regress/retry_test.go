// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package regress

import (
	"math"
	"testing"

	"github.com/lzhangss/phylopath/phylocov"
	"gonum.org/v1/gonum/mat"
)

func TestRetryRidge(t *testing.T) {
	// a rank one covariance:
	// the first attempt can not factorize it,
	// the ridge retry can
	n := 4
	base := mat.NewSymDense(n, []float64{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})

	x := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, []float64{0, 1, 2, 3.1})
	for i := range n {
		x.Set(i, 0, 1)
		x.Set(i, 1, float64(i))
	}

	st := phylocov.Brownian()
	lo, hi := st.Bounds()

	if _, ok := glsAttempt(base, x, y, st, lo, hi, 0); ok {
		t.Fatalf("expecting failure on a singular covariance")
	}

	rd := ridge(base)
	if math.Abs(rd-1e-6) > 1e-12 {
		t.Errorf("ridge: got %.6g, want %.6g", rd, 1e-6)
	}
	fit, ok := glsAttempt(base, x, y, st, lo, hi, rd)
	if !ok {
		t.Fatalf("expecting success with the diagonal ridge")
	}
	if len(fit.Coef) != 2 {
		t.Fatalf("coefficients: got %d, want %d", len(fit.Coef), 2)
	}
	if b := fit.Coef[1]; b <= 0 {
		t.Errorf("slope: got %.6f, want a positive value", b)
	}
	if se := fit.SE[1]; se <= 0 || math.IsNaN(se) {
		t.Errorf("standard error: got %.6f, want a positive value", se)
	}
}
