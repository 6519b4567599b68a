// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a trait data set
// from a TSV file.
//
// The TSV file must contain a "species" field
// and one field per measured variable.
// Empty cells and cells with the value "NA"
// are read as missing observations.
// A column in which every non-missing cell
// parses as a number
// is read as a numeric column;
// any other column is read as categorical.
//
// Here is an example file:
//
//	species	BM	LS	NL	DD
//	Barbourula busuangensis	4.095	3.330	0.000	aquatic
//	Bombina bombina	1.127	6.683	0.315	aquatic
//	Alytes cisternasii	1.218	2.944	0.819	terrestrial
func ReadTSV(r io.Reader) (*Set, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	spF := -1
	var cols []string
	colF := make([]int, 0, len(head))
	for i, h := range head {
		h = strings.TrimSpace(h)
		if strings.ToLower(h) == "species" {
			spF = i
			continue
		}
		if h == "" {
			return nil, fmt.Errorf("on header: empty column name")
		}
		cols = append(cols, h)
		colF = append(colF, i)
	}
	if spF < 0 {
		return nil, fmt.Errorf("expecting field %q", "species")
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("expecting at least one variable column")
	}

	type cell struct {
		species string
		value   string
	}
	obs := make(map[string][]cell, len(cols))

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		sp := strings.Join(strings.Fields(row[spF]), " ")
		if sp == "" {
			continue
		}
		for i, c := range cols {
			v := strings.TrimSpace(row[colF[i]])
			if v == "" || v == "NA" {
				continue
			}
			obs[c] = append(obs[c], cell{species: sp, value: v})
		}
	}

	s := New(cols...)
	for _, c := range cols {
		numeric := true
		for _, o := range obs[c] {
			if _, err := strconv.ParseFloat(o.value, 64); err != nil {
				numeric = false
				break
			}
		}
		for _, o := range obs[c] {
			if numeric {
				v, _ := strconv.ParseFloat(o.value, 64)
				if err := s.SetValue(o.species, c, v); err != nil {
					return nil, err
				}
				continue
			}
			if err := s.SetState(o.species, c, o.value); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// TSV writes the data set as a TSV file.
func (s *Set) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := append([]string{"species"}, s.cols...)
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, sp := range s.species {
		row := make([]string, 0, len(s.cols)+1)
		row = append(row, sp)
		for _, c := range s.cols {
			if s.IsNumeric(c) {
				v, ok := s.num[c][sp]
				if !ok {
					row = append(row, "NA")
					continue
				}
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
				continue
			}
			st, ok := s.states[c][sp]
			if !ok {
				row = append(row, "NA")
				continue
			}
			row = append(row, st)
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
