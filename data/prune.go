// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package data

import (
	"fmt"
	"io"

	"github.com/js-arias/timetree"
)

// Prune matches a data set against a phylogenetic tree.
//
// A species present in the data
// but absent from the tree
// is a fatal error.
// If dropNA is true,
// species with any missing cell are dropped from the data,
// reporting each dropped species on the msg writer.
// Tree terminals without data
// are removed from the tree,
// reporting the pruning once.
//
// It returns a pruned copy of the data set
// and modifies the tree in place.
func (s *Set) Prune(t *timetree.Tree, dropNA bool, msg io.Writer) (*Set, error) {
	if msg == nil {
		msg = io.Discard
	}

	keep := make(map[string]bool, len(s.species))
	for _, sp := range s.species {
		if _, ok := t.TaxNode(sp); !ok {
			return nil, fmt.Errorf("data: species %q not in tree %q", sp, t.Name())
		}
		if dropNA && s.HasNA(sp) {
			fmt.Fprintf(msg, "dropping species %q: missing values\n", sp)
			continue
		}
		keep[sp] = true
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("data: no species left after dropping missing values")
	}

	var pruned int
	for _, term := range t.Terms() {
		if keep[term] {
			continue
		}
		id, ok := t.TaxNode(term)
		if !ok {
			continue
		}
		if err := t.Delete(id); err != nil {
			return nil, fmt.Errorf("data: unable to prune terminal %q from tree %q: %v", term, t.Name(), err)
		}
		pruned++
	}
	if pruned > 0 {
		fmt.Fprintf(msg, "tree %q: pruned %d terminals without data\n", t.Name(), pruned)
	}

	ns := New(s.cols...)
	for _, sp := range s.species {
		if !keep[sp] {
			continue
		}
		ns.Add(sp)
		for _, c := range s.cols {
			if v, ok := s.num[c][sp]; ok {
				ns.num[c][sp] = v
			}
			if st, ok := s.states[c][sp]; ok {
				ns.states[c][sp] = st
			}
		}
	}
	return ns, nil
}
