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

// Logistic fits a phylogenetic logistic regression
// of a two-state response variable
// on a set of predictor terms,
// by penalized quasi-likelihood:
// iterative re-weighted least squares
// in which the working covariance
// blends the phylogenetic correlation of the tree
// with independence,
// under a signal parameter
// estimated by profile likelihood.
// Coefficient tests are Wald z tests.
//
// The response column must be categorical
// with exactly two observed states,
// recoded as 0 and 1.
func Logistic(ds *data.Set, t *timetree.Tree, dep string, terms []string, st phylocov.Structure) (*Fit, error) {
	species := ds.Species()
	n := len(species)
	p := len(terms) + 1
	if n <= p {
		return nil, fmt.Errorf("regress: logistic: %d observations for %d parameters", n, p)
	}

	yv, err := ds.Column(dep, species)
	if err != nil {
		return nil, fmt.Errorf("regress: logistic: %v", err)
	}
	y := mat.NewVecDense(n, yv)

	x := mat.NewDense(n, p, nil)
	for i := range n {
		x.Set(i, 0, 1)
	}
	for j, tm := range terms {
		col, err := ds.Column(tm, species)
		if err != nil {
			return nil, fmt.Errorf("regress: logistic: %v", err)
		}
		for i, v := range col {
			x.Set(i, j+1, v)
		}
	}

	base, err := phylocov.VCV(t, species)
	if err != nil {
		return nil, fmt.Errorf("regress: logistic: %v", err)
	}
	cor := toCorrelation(base)

	beta := irls(x, y)

	lo, hi := st.Bounds()
	var sol *glsSol
	var best float64
	for range 2 {
		// working response and weights at the current estimate
		var eta mat.VecDense
		eta.MulVec(x, beta)
		w := make([]float64, n)
		z := mat.NewVecDense(n, nil)
		for i := range n {
			mu := logistic(eta.AtVec(i))
			w[i] = mu * (1 - mu)
			z.SetVec(i, eta.AtVec(i)+(y.AtVec(i)-mu)/w[i])
		}

		solveAt := func(g float64) (*glsSol, bool) {
			return solveGLS(workCov(cor, st, g, w), x, z)
		}
		g, ok := searchParam(lo, hi, func(g float64) (float64, bool) {
			s, ok := solveAt(g)
			if !ok {
				return 0, false
			}
			return s.logLik(n), true
		})
		if !ok {
			return nil, fmt.Errorf("regress: logistic: unable to fit %q on %v", dep, terms)
		}
		sol, ok = solveAt(g)
		if !ok {
			return nil, fmt.Errorf("regress: logistic: unable to fit %q on %v", dep, terms)
		}
		best = g
		beta = sol.beta
	}

	s2 := sol.rss / float64(n-p)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	q := norm.Quantile(0.975)

	fit := &Fit{
		Dep:    dep,
		Terms:  terms,
		Method: "logistic",
		Coef:   make([]float64, p),
		SE:     make([]float64, p),
		PVal:   make([]float64, p),
		Lower:  make([]float64, p),
		Upper:  make([]float64, p),
		Phylo:  best,
		N:      n,
		LogLik: sol.logLik(n),
	}
	for j := range p {
		b := sol.beta.AtVec(j)
		se := math.Sqrt(s2 * sol.inv.At(j, j))
		fit.Coef[j] = b
		fit.SE[j] = se
		if se > 0 {
			fit.PVal[j] = 2 * norm.CDF(-math.Abs(b/se))
		}
		fit.Lower[j] = b - q*se
		fit.Upper[j] = b + q*se
	}
	return fit, nil
}

// WorkCov returns the working covariance
// of the working response:
// the phylogenetic correlation at the given signal value,
// scaled by the inverse square root
// of the binomial weights.
func workCov(cor *mat.SymDense, st phylocov.Structure, g float64, w []float64) *mat.SymDense {
	n := len(w)
	r := st.Cov(cor, g)
	v := mat.NewSymDense(n, nil)
	for i := range n {
		di := 1 / math.Sqrt(w[i])
		for j := i; j < n; j++ {
			dj := 1 / math.Sqrt(w[j])
			v.SetSym(i, j, di*r.At(i, j)*dj)
		}
	}
	return v
}

// ToCorrelation scales a covariance matrix
// to unit diagonal.
func toCorrelation(base *mat.SymDense) *mat.SymDense {
	n := base.SymmetricDim()
	cor := mat.NewSymDense(n, nil)
	for i := range n {
		cor.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			d := math.Sqrt(base.At(i, i) * base.At(j, j))
			if d == 0 {
				continue
			}
			cor.SetSym(i, j, base.At(i, j)/d)
		}
	}
	return cor
}

// Irls runs a plain logistic regression
// by iterative re-weighted least squares,
// used as the starting point
// of the phylogenetic fit.
func irls(x *mat.Dense, y *mat.VecDense) *mat.VecDense {
	n, p := x.Dims()
	beta := mat.NewVecDense(p, nil)
	for range 25 {
		var eta mat.VecDense
		eta.MulVec(x, beta)

		w := mat.NewSymDense(n, nil)
		z := mat.NewVecDense(n, nil)
		for i := range n {
			mu := logistic(eta.AtVec(i))
			wi := mu * (1 - mu)
			w.SetSym(i, i, 1/wi)
			z.SetVec(i, eta.AtVec(i)+(y.AtVec(i)-mu)/wi)
		}
		sol, ok := solveGLS(w, x, z)
		if !ok {
			break
		}
		var diff mat.VecDense
		diff.SubVec(sol.beta, beta)
		beta = sol.beta
		if mat.Norm(&diff, 2) < 1e-8 {
			break
		}
	}
	return beta
}

// Logistic is the standard logistic function,
// with the linear predictor clamped
// to avoid degenerate weights.
func logistic(eta float64) float64 {
	mu := 1 / (1 + math.Exp(-eta))
	if mu < 1e-6 {
		return 1e-6
	}
	if mu > 1-1e-6 {
		return 1 - 1e-6
	}
	return mu
}
