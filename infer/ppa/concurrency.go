// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ppa

import (
	"runtime"
	"sync"

	"github.com/js-arias/timetree"
	"github.com/lzhangss/phylopath/dag"
	"github.com/lzhangss/phylopath/data"
	"github.com/lzhangss/phylopath/phylocov"
	"github.com/lzhangss/phylopath/regress"
)

type fitAnswer struct {
	idx int
	fit *regress.Fit
	err error
}

// FitAll fits every distinct statement
// across a fixed-size worker pool.
// The fits are independent
// and share no mutable state,
// so the output is identical
// to a sequential execution.
// Use cpu to define the number of parallel processes;
// the default (zero) uses the available parallelism
// minus one.
func fitAll(stmts []dag.Statement, ds *data.Set, t *timetree.Tree, st phylocov.Structure, cpu int) ([]*regress.Fit, error) {
	if len(stmts) == 0 {
		return nil, nil
	}
	if cpu == 0 {
		cpu = runtime.GOMAXPROCS(0) - 1
	}
	if cpu < 1 {
		cpu = 1
	}
	if cpu > len(stmts) {
		cpu = len(stmts)
	}

	jobs := make(chan int, cpu*2)
	answer := make(chan fitAnswer, cpu*2)

	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f, err := fitStatement(stmts[i], ds, t, st)
				answer <- fitAnswer{idx: i, fit: f, err: err}
			}
		}()
	}
	go func() {
		for i := range stmts {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(answer)
	}()

	fits := make([]*regress.Fit, len(stmts))
	var err error
	for a := range answer {
		if a.err != nil {
			if err == nil {
				err = a.err
			}
			continue
		}
		fits[a.idx] = a.fit
	}
	if err != nil {
		return nil, err
	}
	return fits, nil
}
