// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import cli "gopkg.in/urfave/cli.v1"

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "ledger config file (YAML), built in defaults if omitted",
		EnvVar: "LEDGERSIM_CONFIG",
	}
	scenarioFlag = cli.StringFlag{
		Name:   "scenario",
		Usage:  "scenario file (YAML) to run",
		EnvVar: "LEDGERSIM_SCENARIO",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "datadir",
		Usage:  "directory for a persistent store, overrides storage.path",
		EnvVar: "LEDGERSIM_DATADIR",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-9)",
		EnvVar: "LEDGERSIM_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "LEDGERSIM_JSON_LOGS",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: "LEDGERSIM_ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: "LEDGERSIM_METRICS_ADDR",
	}
)
