// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/halom-protocol/halom/api"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/metrics"
	"github.com/halom-protocol/halom/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

const (
	clockCheckInterval = 10 * time.Minute
	dbStatsInterval    = time.Minute
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Halom",
		Usage:     "Node of the Halom staking and governance ledger",
		Copyright: "2025 The Halom developers",
		Flags: []cli.Flag{
			configFileFlag,
			networkFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			enableMetricsFlag,
			verbosityFlag,
			jsonLogsFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg)

	if cfg.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(cfg)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(cfg, gene)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(cfg, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	eventDB, err := openEventDB(cfg, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	rt, err := runtime.New(mainDB, eventDB, halom.SystemClock{})
	if err != nil {
		return err
	}
	if err := rt.InitGenesis(gene); err != nil {
		return errors.Wrap(err, "init genesis")
	}

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(cfg.EnableAPILogs)
	handler := api.New(rt, api.Options{
		AllowedOrigins:       cfg.APICors,
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: cfg.APISlowQueriesThreshold,
		EnableMetrics:        cfg.EnableMetrics,
		LogsLimit:            cfg.APILogsLimit,
		EnableTransact:       cfg.isDev(),
	})
	srv, listener, err := newAPIServer(cfg.APIAddr, handler)
	if err != nil {
		return err
	}

	printStartupMessage(gene.Name(), gene.ID(), instanceDir, "http://"+listener.Addr().String()+"/")

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.NTPServer != "" {
		group.Go(func() error {
			ticker := time.NewTicker(clockCheckInterval)
			defer ticker.Stop()
			checkClockOffset(cfg.NTPServer)
			for {
				select {
				case <-groupCtx.Done():
					return nil
				case <-ticker.C:
					checkClockOffset(cfg.NTPServer)
				}
			}
		})
	}
	if cfg.EnableMetrics {
		group.Go(func() error {
			ticker := time.NewTicker(dbStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-groupCtx.Done():
					return nil
				case <-ticker.C:
					collectDBStats(mainDB)
				}
			}
		})
	}
	return group.Wait()
}

func printStartupMessage(network string, genesisID halom.Bytes32, instanceDir, apiURL string) {
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		genesisID, network,
		instanceDir,
		apiURL)
}
