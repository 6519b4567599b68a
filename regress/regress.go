// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package regress provides phylogenetically corrected regressions:
// generalized least squares
// for continuous response variables,
// and a penalized quasi-likelihood approximation
// for binary response variables.
package regress

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// A Fit is the result of a fitted regression
// of a response variable
// on a set of predictor terms.
type Fit struct {
	// Dep is the response variable.
	Dep string

	// Terms are the predictor variables,
	// with the variable under test first.
	Terms []string

	// Method is the regression engine used,
	// either "gls" or "logistic".
	Method string

	// Coefficient estimates,
	// standard errors,
	// p-values,
	// and 95% confidence bounds,
	// indexed as intercept first
	// and then one entry per term.
	Coef  []float64
	SE    []float64
	PVal  []float64
	Lower []float64
	Upper []float64

	// Phylo is the estimate of the phylogenetic signal:
	// Pagel's lambda on a GLS fit,
	// or its analogue on a binary fit.
	Phylo float64

	// N is the number of observations.
	N int

	// LogLik is the maximized log-likelihood
	// of the working model.
	LogLik float64
}

// P returns the p-value of the variable under test
// (the first term of the regression).
func (f *Fit) P() float64 {
	return f.PVal[1]
}

// A glsSol is the solution of a generalized least squares
// for a fixed covariance matrix.
type glsSol struct {
	beta   *mat.VecDense
	rss    float64 // generalized residual sum of squares
	logDet float64 // log determinant of the covariance
	inv    *mat.SymDense
}

// SolveGLS solves the generalized least squares
// y = X*beta + e,
// with e distributed with covariance v.
// It reports failure if the covariance
// or the normal equations
// can not be factorized.
func solveGLS(v *mat.SymDense, x *mat.Dense, y *mat.VecDense) (*glsSol, bool) {
	var chol mat.Cholesky
	if ok := chol.Factorize(v); !ok {
		return nil, false
	}

	_, p := x.Dims()
	var vix mat.Dense
	if err := chol.SolveTo(&vix, x); err != nil {
		return nil, false
	}
	var viy mat.VecDense
	if err := chol.SolveVecTo(&viy, y); err != nil {
		return nil, false
	}

	// normal equations
	var xtvix mat.Dense
	xtvix.Mul(x.T(), &vix)
	a := mat.NewSymDense(p, nil)
	for i := range p {
		for j := i; j < p; j++ {
			a.SetSym(i, j, xtvix.At(i, j))
		}
	}
	var b mat.VecDense
	b.MulVec(x.T(), &viy)

	var aChol mat.Cholesky
	if ok := aChol.Factorize(a); !ok {
		return nil, false
	}
	beta := mat.NewVecDense(p, nil)
	if err := aChol.SolveVecTo(beta, &b); err != nil {
		return nil, false
	}
	inv := mat.NewSymDense(p, nil)
	if err := aChol.InverseTo(inv); err != nil {
		return nil, false
	}

	var xb mat.VecDense
	xb.MulVec(x, beta)
	var r mat.VecDense
	r.SubVec(y, &xb)
	var vir mat.VecDense
	if err := chol.SolveVecTo(&vir, &r); err != nil {
		return nil, false
	}
	rss := mat.Dot(&r, &vir)
	if rss < 0 || math.IsNaN(rss) {
		return nil, false
	}

	return &glsSol{
		beta:   beta,
		rss:    rss,
		logDet: chol.LogDet(),
		inv:    inv,
	}, true
}

// LogLik returns the profile log-likelihood
// of a solution,
// with the scale parameter
// replaced by its maximum likelihood estimate.
func (s *glsSol) logLik(n int) float64 {
	if s.rss <= 0 {
		return math.Inf(-1)
	}
	fn := float64(n)
	s2 := s.rss / fn
	return -0.5 * (fn*math.Log(2*math.Pi*s2) + s.logDet + fn)
}

// SearchParam searches the parameter value
// that maximizes a profile criterion
// on a closed interval,
// by iterative grid refinement.
// The criterion reports failure
// on parameter values it can not be evaluated at;
// the search fails only if no value
// of the initial grid can be evaluated.
func searchParam(lo, hi float64, crit func(p float64) (float64, bool)) (float64, bool) {
	if lo == hi {
		_, ok := crit(lo)
		return lo, ok
	}

	min, max := lo, hi
	var best float64
	found := false
	for step := (hi - lo) / 10; step > (hi-lo)/1_000_000; step /= 10 {
		bestCrit := math.Inf(-1)
		ok := false
		for p := min; p <= max+step/2; p += step {
			v := p
			if v > hi {
				v = hi
			}
			c, k := crit(v)
			if !k {
				continue
			}
			if c > bestCrit {
				bestCrit = c
				best = v
				ok = true
			}
		}
		if !ok {
			return 0, false
		}
		found = true
		min = math.Max(lo, best-step)
		max = math.Min(hi, best+step)
	}
	return best, found
}
