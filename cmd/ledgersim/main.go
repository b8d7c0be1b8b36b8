// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// ledgersim runs a scenario of transactions and stake period rolls against a
// ledger and prints the resulting state.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/ledger"
	"github.com/stakeledger/ledger/log"
	"github.com/stakeledger/ledger/metrics"
)

var (
	version   string
	gitCommit string
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s", version, gitCommit)
	app.Name = "ledgersim"
	app.Usage = "run staking ledger scenarios"
	app.Flags = []cli.Flag{
		configFlag,
		scenarioFlag,
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
	app.Action = run
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		return errors.New("--scenario required")
	}
	scenario, err := loadScenario(path)
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		defer closeFunc()
		log.Root().Info("metrics server started", "url", url)
	}

	l, err := ledger.Open(cfg)
	if err != nil {
		return errors.Wrap(err, "open ledger")
	}
	defer l.Close()

	report, err := runScenario(l, scenario)
	if err != nil {
		return err
	}
	return writeReport(ctx.App.Writer, report)
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if dir := ctx.String(dataDirFlag.Name); dir != "" {
		if cfg.Storage.Backend == config.BackendMemory {
			cfg.Storage.Backend = config.BackendLevelDB
		}
		cfg.Storage.Path = filepath.Join(dir, "ledger."+string(cfg.Storage.Backend))
	}
	return cfg, cfg.Validate()
}
