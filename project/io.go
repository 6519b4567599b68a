// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/js-arias/timetree"
	"github.com/lzhangss/phylopath/dag"
	"github.com/lzhangss/phylopath/data"
)

// Models reads the candidate model set
// as defined in a project.
//
// The models file is a TSV file
// with the following fields:
//
//   - model, the name of the model
//   - formula, a regression-style formula
//     ("child ~ parent + parent")
//     defining the edges toward a variable
//
// Here is an example file:
//
//	model	formula
//	one	RS ~ DD
//	one	DD ~ NL
//	one	NL ~ BM
//	two	RS ~ BM
//	two	NL ~ BM
//	two	DD ~ NL
func (p *Project) Models() (dag.Set, error) {
	name := p.Path(Models)
	if name == "" {
		return nil, fmt.Errorf("model set not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := readModels(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return s, nil
}

func readModels(r io.Reader) (dag.Set, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"model", "formula"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	formulas := make(map[string][]string)
	var names []string
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "model"
		nm := strings.TrimSpace(row[fields[f]])
		if nm == "" {
			continue
		}

		f = "formula"
		fm := strings.TrimSpace(row[fields[f]])
		if fm == "" {
			continue
		}
		if _, ok := formulas[nm]; !ok {
			names = append(names, nm)
		}
		formulas[nm] = append(formulas[nm], fm)
	}

	s := make(dag.Set, len(names))
	for _, nm := range names {
		d, err := dag.New(formulas[nm]...)
		if err != nil {
			return nil, fmt.Errorf("model %q: %v", nm, err)
		}
		s[nm] = d
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("empty model set")
	}
	return s, nil
}

// Traits reads the trait data set
// as defined in a project.
func (p *Project) Traits() (*data.Set, error) {
	name := p.Path(Traits)
	if name == "" {
		return nil, fmt.Errorf("trait data not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := data.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return ds, nil
}

// Trees reads the phylogenetic trees
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("tree file not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tc, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("when reading file %q: %v", name, err)
	}
	return tc, nil
}
