// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ppa

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// A ModelSum is the goodness of fit summary
// of a single model.
type ModelSum struct {
	// Name of the model.
	Name string

	// K is the size of the basis set.
	K int

	// Q is the complexity of the model:
	// the number of variables
	// plus the number of edges.
	Q int

	// C is the Fisher's C statistic:
	// the combination of the p-values
	// of the basis set.
	C float64

	// P is the p-value of the C statistic
	// under a chi-squared distribution
	// with 2k degrees of freedom.
	// A model with an empty basis set
	// has a p-value of 1.
	P float64

	// CICc is the C statistic information criterion
	// with a small sample correction.
	// Lower values indicate better models.
	CICc float64

	// Delta is the CICc difference
	// with the best model.
	Delta float64

	// Lik is the relative likelihood of the model.
	Lik float64

	// Weight is the normalized model weight.
	Weight float64
}

// A Summary is the ranking of the compared models,
// in ascending CICc order
// (best model first).
type Summary []ModelSum

// Summary returns the ranking
// of the compared models.
// The table is computed fresh on each call.
func (r *Result) Summary() Summary {
	sum := make(Summary, 0, len(r.models))
	for _, nm := range r.models.Names() {
		d := r.models[nm]
		tab := r.dsep[nm]

		c := 0.0
		for _, ds := range tab {
			c += -2 * math.Log(ds.Fit.P())
		}
		k := len(tab)
		p := 1.0
		if k > 0 {
			chi := distuv.ChiSquared{K: float64(2 * k)}
			p = chi.Survival(c)
		}

		q := len(d.Vars()) + d.Edges()
		cicc := math.Inf(1)
		if den := r.n - q - 1; den > 0 {
			cicc = c + 2*float64(q)*float64(r.n)/float64(den)
		}

		sum = append(sum, ModelSum{
			Name: nm,
			K:    k,
			Q:    q,
			C:    c,
			P:    p,
			CICc: cicc,
		})
	}

	sort.SliceStable(sum, func(i, j int) bool { return sum[i].CICc < sum[j].CICc })

	min := sum[0].CICc
	var likSum float64
	for i := range sum {
		d := sum[i].CICc - min
		if math.IsInf(sum[i].CICc, 1) && math.IsInf(min, 1) {
			d = 0
		}
		sum[i].Delta = d
		sum[i].Lik = math.Exp(-0.5 * d)
		likSum += sum[i].Lik
	}
	for i := range sum {
		sum[i].Weight = sum[i].Lik / likSum
	}
	return sum
}

// TSV writes the summary as a TSV table.
func (s Summary) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"model", "k", "q", "C", "p", "CICc", "delta_CICc", "l", "w"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}
	for _, m := range s {
		row := []string{
			m.Name,
			strconv.Itoa(m.K),
			strconv.Itoa(m.Q),
			strconv.FormatFloat(m.C, 'f', 3, 64),
			strconv.FormatFloat(m.P, 'f', 3, 64),
			strconv.FormatFloat(m.CICc, 'f', 3, 64),
			strconv.FormatFloat(m.Delta, 'f', 3, 64),
			strconv.FormatFloat(m.Lik, 'f', 3, 64),
			strconv.FormatFloat(m.Weight, 'f', 3, 64),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
