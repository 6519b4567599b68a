// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package regress

import (
	"fmt"
	"math"

	"github.com/js-arias/timetree"
	"github.com/lzhangss/phylopath/data"
	"github.com/lzhangss/phylopath/phylocov"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GLS fits a phylogenetically corrected
// generalized least squares regression
// of a continuous response variable
// on a set of predictor terms,
// using the given correlation structure
// (e.g. Pagel's lambda).
// The signal parameter of the structure
// is estimated by maximum likelihood.
//
// If the fit fails,
// it is retried once
// on a bounded interior interval
// with a small ridge on the covariance diagonal,
// before reporting the error.
func GLS(ds *data.Set, t *timetree.Tree, dep string, terms []string, st phylocov.Structure) (*Fit, error) {
	species := ds.Species()
	n := len(species)
	p := len(terms) + 1
	if n <= p {
		return nil, fmt.Errorf("regress: gls: %d observations for %d parameters", n, p)
	}

	yv, err := ds.Column(dep, species)
	if err != nil {
		return nil, fmt.Errorf("regress: gls: %v", err)
	}
	y := mat.NewVecDense(n, yv)

	x := mat.NewDense(n, p, nil)
	for i := range n {
		x.Set(i, 0, 1)
	}
	for j, tm := range terms {
		col, err := ds.Column(tm, species)
		if err != nil {
			return nil, fmt.Errorf("regress: gls: %v", err)
		}
		for i, v := range col {
			x.Set(i, j+1, v)
		}
	}

	base, err := phylocov.VCV(t, species)
	if err != nil {
		return nil, fmt.Errorf("regress: gls: %v", err)
	}

	lo, hi := st.Bounds()
	fit, ok := glsAttempt(base, x, y, st, lo, hi, 0)
	if !ok {
		// bounded retry with a ridge
		rd := ridge(base)
		if lo < hi {
			span := hi - lo
			lo += span / 100
			hi -= span / 100
		}
		fit, ok = glsAttempt(base, x, y, st, lo, hi, rd)
		if !ok {
			return nil, fmt.Errorf("regress: gls: unable to fit %q on %v", dep, terms)
		}
	}

	fit.Dep = dep
	fit.Terms = terms
	fit.Method = "gls"
	fit.N = n
	return fit, nil
}

// GlsAttempt runs a single fitting attempt:
// a profile likelihood search
// on the signal parameter
// and the coefficient tests
// at the best value found.
func glsAttempt(base *mat.SymDense, x *mat.Dense, y *mat.VecDense, st phylocov.Structure, lo, hi, rd float64) (*Fit, bool) {
	n, p := x.Dims()

	solveAt := func(g float64) (*glsSol, bool) {
		v := st.Cov(base, g)
		if rd > 0 {
			for i := range n {
				v.SetSym(i, i, v.At(i, i)+rd)
			}
		}
		return solveGLS(v, x, y)
	}

	best, ok := searchParam(lo, hi, func(g float64) (float64, bool) {
		sol, ok := solveAt(g)
		if !ok {
			return 0, false
		}
		return sol.logLik(n), true
	})
	if !ok {
		return nil, false
	}
	sol, ok := solveAt(best)
	if !ok {
		return nil, false
	}

	df := float64(n - p)
	s2 := sol.rss / df
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	q := dist.Quantile(0.975)

	fit := &Fit{
		Coef:   make([]float64, p),
		SE:     make([]float64, p),
		PVal:   make([]float64, p),
		Lower:  make([]float64, p),
		Upper:  make([]float64, p),
		Phylo:  best,
		LogLik: sol.logLik(n),
	}
	for j := range p {
		b := sol.beta.AtVec(j)
		se := math.Sqrt(s2 * sol.inv.At(j, j))
		fit.Coef[j] = b
		fit.SE[j] = se
		if se > 0 {
			fit.PVal[j] = 2 * dist.CDF(-math.Abs(b/se))
		}
		fit.Lower[j] = b - q*se
		fit.Upper[j] = b + q*se
	}
	return fit, true
}

// Ridge returns a small jitter
// proportional to the covariance scale.
func ridge(base *mat.SymDense) float64 {
	n := base.SymmetricDim()
	var sum float64
	for i := range n {
		sum += base.At(i, i)
	}
	return 1e-6 * sum / float64(n)
}
