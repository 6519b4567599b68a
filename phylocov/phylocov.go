// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylocov provides the expected covariance
// among the terminals of a phylogenetic tree
// under Brownian motion evolution,
// and the correlation structures
// used to correct a regression
// for shared evolutionary history.
package phylocov

import (
	"fmt"

	"github.com/js-arias/timetree"
	"gonum.org/v1/gonum/mat"
)

const millionYears = 1_000_000

// VCV returns the phylogenetic covariance matrix
// for the given taxa,
// in the given taxon order.
// The covariance between two terminals
// is the depth
// (root age minus node age,
// in million years)
// of their most recent common ancestor;
// the variance of a terminal is its own depth.
func VCV(t *timetree.Tree, taxa []string) (*mat.SymDense, error) {
	root := t.Root()
	rootAge := t.Age(root)

	paths := make([][]int, len(taxa))
	for i, tax := range taxa {
		id, ok := t.TaxNode(tax)
		if !ok {
			return nil, fmt.Errorf("phylocov: taxon %q not in tree %q", tax, t.Name())
		}
		paths[i] = pathToRoot(t, id)
	}

	vcv := mat.NewSymDense(len(taxa), nil)
	for i := range taxa {
		di := float64(rootAge-t.Age(paths[i][0])) / millionYears
		vcv.SetSym(i, i, di)
		for j := i + 1; j < len(taxa); j++ {
			m := mrca(paths[i], paths[j])
			d := float64(rootAge-t.Age(m)) / millionYears
			vcv.SetSym(i, j, d)
		}
	}
	return vcv, nil
}

// PathToRoot returns the node path
// from a terminal up to the root.
func pathToRoot(t *timetree.Tree, id int) []int {
	path := []int{id}
	for n := id; !t.IsRoot(n); {
		n = t.Parent(n)
		path = append(path, n)
	}
	return path
}

// Mrca returns the most recent common ancestor
// of two terminals
// given their root paths.
func mrca(a, b []int) int {
	anc := make(map[int]bool, len(a))
	for _, n := range a {
		anc[n] = true
	}
	for _, n := range b {
		if anc[n] {
			return n
		}
	}
	// root is on every path
	return b[len(b)-1]
}

// A Structure defines a correlation structure
// used by the regression engines:
// a transformation of the base phylogenetic covariance
// controlled by a single signal parameter.
type Structure interface {
	// Name of the structure.
	Name() string

	// Bounds returns the search interval
	// of the signal parameter.
	// Equal bounds define a fixed parameter.
	Bounds() (min, max float64)

	// Cov returns the covariance matrix
	// at the given parameter value.
	Cov(base *mat.SymDense, p float64) *mat.SymDense
}

// Pagel returns the Pagel's lambda structure:
// the off-diagonal covariances are scaled
// by a lambda parameter between 0
// (no phylogenetic signal)
// and 1
// (plain Brownian motion).
func Pagel() Structure {
	return pagel{}
}

type pagel struct{}

func (pagel) Name() string { return "pagel" }

func (pagel) Bounds() (min, max float64) { return 0, 1 }

func (pagel) Cov(base *mat.SymDense, p float64) *mat.SymDense {
	n := base.SymmetricDim()
	v := mat.NewSymDense(n, nil)
	for i := range n {
		v.SetSym(i, i, base.At(i, i))
		for j := i + 1; j < n; j++ {
			v.SetSym(i, j, p*base.At(i, j))
		}
	}
	return v
}

// Brownian returns the Brownian motion structure:
// the base covariance is used unchanged
// and there is no free parameter.
func Brownian() Structure {
	return brownian{}
}

type brownian struct{}

func (brownian) Name() string { return "brownian" }

func (brownian) Bounds() (min, max float64) { return 1, 1 }

func (brownian) Cov(base *mat.SymDense, p float64) *mat.SymDense {
	n := base.SymmetricDim()
	v := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			v.SetSym(i, j, base.At(i, j))
		}
	}
	return v
}
