// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package data_test

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/lzhangss/phylopath/data"
)

var testTSV = `species	BM	NL	DD
Sp1	4.095	0.000	aquatic
Sp2	1.127	0.315	aquatic
Sp3	1.218	0.819	terrestrial
Sp4	2.310	NA	terrestrial
Sp5	3.440	1.221	aquatic
`

func TestReadTSV(t *testing.T) {
	ds, err := data.ReadTSV(strings.NewReader(testTSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cols := ds.Columns(); !reflect.DeepEqual(cols, []string{"BM", "NL", "DD"}) {
		t.Errorf("columns: got %v", cols)
	}
	if sp := ds.Species(); len(sp) != 5 {
		t.Errorf("species: got %d, want %d", len(sp), 5)
	}

	if !ds.IsNumeric("BM") {
		t.Errorf("column BM: expecting a numeric column")
	}
	if ds.IsNumeric("DD") {
		t.Errorf("column DD: expecting a categorical column")
	}

	if v, ok := ds.Value("Sp2", "BM"); !ok || math.Abs(v-1.127) > 1e-9 {
		t.Errorf("value Sp2 BM: got %.3f (%v), want %.3f", v, ok, 1.127)
	}
	if st, ok := ds.State("Sp3", "DD"); !ok || st != "terrestrial" {
		t.Errorf("state Sp3 DD: got %q (%v)", st, ok)
	}

	if _, ok := ds.Value("Sp4", "NL"); ok {
		t.Errorf("value Sp4 NL: expecting a missing cell")
	}
	if !ds.HasNA("Sp4") {
		t.Errorf("species Sp4: expecting missing values")
	}
	if ds.HasNA("Sp1") {
		t.Errorf("species Sp1: unexpected missing values")
	}
}

func TestReadTSVErrors(t *testing.T) {
	bad := []struct {
		name string
		tsv  string
	}{
		{"no species field", "taxon\tBM\nSp1\t1.0\n"},
		{"no variables", "species\nSp1\n"},
	}
	for _, b := range bad {
		if _, err := data.ReadTSV(strings.NewReader(b.tsv)); err == nil {
			t.Errorf("%s: expecting error", b.name)
		}
	}
}

func TestWriteTSV(t *testing.T) {
	ds, err := data.ReadTSV(strings.NewReader(testTSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := ds.TSV(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nd, err := data.ReadTSV(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(nd.Columns(), ds.Columns()) {
		t.Errorf("columns: got %v, want %v", nd.Columns(), ds.Columns())
	}
	if !reflect.DeepEqual(nd.Species(), ds.Species()) {
		t.Errorf("species: got %v, want %v", nd.Species(), ds.Species())
	}
	for _, sp := range ds.Species() {
		for _, c := range ds.Columns() {
			if !ds.IsNumeric(c) {
				w, wok := ds.State(sp, c)
				g, gok := nd.State(sp, c)
				if g != w || gok != wok {
					t.Errorf("state %s %s: got %q, want %q", sp, c, g, w)
				}
				continue
			}
			w, wok := ds.Value(sp, c)
			g, gok := nd.Value(sp, c)
			if gok != wok || math.Abs(g-w) > 1e-6 {
				t.Errorf("value %s %s: got %.6f, want %.6f", sp, c, g, w)
			}
		}
	}
}

func TestColumn(t *testing.T) {
	ds, err := data.ReadTSV(strings.NewReader(testTSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	species := []string{"Sp1", "Sp2", "Sp3"}
	col, err := ds.Column("DD", species)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// states are recoded in sorted order:
	// aquatic = 0,
	// terrestrial = 1
	want := []float64{0, 0, 1}
	if !reflect.DeepEqual(col, want) {
		t.Errorf("column DD: got %v, want %v", col, want)
	}

	if _, err := ds.Column("NL", []string{"Sp4"}); err == nil {
		t.Errorf("column NL: expecting error on a missing cell")
	}
}

func TestColumnCategories(t *testing.T) {
	many := `species	DD
Sp1	aquatic
Sp2	terrestrial
Sp3	arboreal
`
	ds, err := data.ReadTSV(strings.NewReader(many))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = ds.Column("DD", ds.Species())
	if err == nil {
		t.Fatalf("expecting error on a three state column")
	}
	if !strings.Contains(err.Error(), "too many categories") {
		t.Errorf("error %q: expecting too many categories", err)
	}

	one := `species	DD
Sp1	aquatic
Sp2	aquatic
`
	ds, err = data.ReadTSV(strings.NewReader(one))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = ds.Column("DD", ds.Species())
	if err == nil {
		t.Fatalf("expecting error on a single state column")
	}
	if !strings.Contains(err.Error(), "only one category") {
		t.Errorf("error %q: expecting only one category", err)
	}
}

func TestStandardize(t *testing.T) {
	ds, err := data.ReadTSV(strings.NewReader(testTSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ds.Standardize()

	var sum, sum2 float64
	var n int
	for _, sp := range ds.Species() {
		v, ok := ds.Value(sp, "BM")
		if !ok {
			continue
		}
		sum += v
		sum2 += v * v
		n++
	}
	mean := sum / float64(n)
	sd := math.Sqrt((sum2 - sum*mean) / float64(n-1))
	if math.Abs(mean) > 1e-9 {
		t.Errorf("column BM: got mean %.6f, want %.6f", mean, 0.0)
	}
	if math.Abs(sd-1) > 1e-9 {
		t.Errorf("column BM: got standard deviation %.6f, want %.6f", sd, 1.0)
	}

	// categorical columns are untouched
	if st, ok := ds.State("Sp1", "DD"); !ok || st != "aquatic" {
		t.Errorf("state Sp1 DD: got %q (%v)", st, ok)
	}
}
