// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/stakeledger/ledger/log"
)

func initLogger(verbosity int, jsonLogs bool) {
	lvl := log.LevelFromVerbosity(verbosity)
	var handler slog.Handler
	if jsonLogs {
		handler = log.NewJSONHandler(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}
