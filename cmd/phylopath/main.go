// Copyright © 2025 L. Zhang
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Phylopath is a tool for phylogenetic path analysis.
package main

import (
	"github.com/js-arias/command"
	"github.com/lzhangss/phylopath/cmd/phylopath/analyze"
	"github.com/lzhangss/phylopath/cmd/phylopath/coef"
	"github.com/lzhangss/phylopath/cmd/phylopath/models"
	"github.com/lzhangss/phylopath/cmd/phylopath/plotcmd"
)

var app = &command.Command{
	Usage: "phylopath <command> [<argument>...]",
	Short: "a tool for phylogenetic path analysis",
}

func init() {
	app.Add(analyze.Command)
	app.Add(coef.Command)
	app.Add(models.Command)
	app.Add(plotcmd.Command)
}

func main() {
	app.Main()
}
