// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Command sectiond runs a single section-overlay node: the lifecycle
// state machine, its Link Layer transport, and a read-only status/
// metrics server. Modeled on cmd/thor/solo's command-construction
// idiom (package-level log15 logger, a long-running Run(ctx) driven
// from main, explicit shutdown coordination) but built around
// gopkg.in/urfave/cli.v1 flags rather than thor's own flag set, per
// spec.md's ambient CLI concern.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"
	gcli "gopkg.in/urfave/cli.v1"

	"github.com/sectioncore/overlay/accumulator"
	"github.com/sectioncore/overlay/agreement"
	"github.com/sectioncore/overlay/api/status"
	"github.com/sectioncore/overlay/co"
	"github.com/sectioncore/overlay/config"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/lifecycle"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/telemetry"
)

var log = log15.New("pkg", "sectiond")

func main() {
	app := gcli.NewApp()
	app.Name = "sectiond"
	app.Usage = "section overlay network node"
	app.Version = "0.1.0"
	app.Flags = []gcli.Flag{
		gcli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
		gcli.StringSliceFlag{Name: "bootstrap", Usage: "hard-coded bootstrap contact (host:port), repeatable"},
		gcli.StringFlag{Name: "listen", Usage: "Link Layer listen address", Value: ":5400"},
		gcli.StringFlag{Name: "metrics-addr", Usage: "Prometheus /metrics listen address", Value: ":8081"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Crit("fatal", "err", err)
		os.Exit(1)
	}
}

func run(c *gcli.Context) error {
	cfg := config.Default()
	if p := c.String("config"); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Node.ListenAddr = listen
	}
	if addr := c.String("metrics-addr"); addr != "" {
		cfg.API.MetricsAddr = addr
	}
	if bs := c.StringSlice("bootstrap"); len(bs) > 0 {
		cfg.Bootstrap.Contacts = bs
	}

	if err := os.MkdirAll(cfg.Node.DataDir, 0o700); err != nil {
		return err
	}

	cache, err := link.OpenContactCache(filepath.Join(cfg.Node.DataDir, "contacts"))
	if err != nil {
		return err
	}
	defer cache.Close()

	gen := id.NewKeyGenerator()
	self, _ := gen.GenerateMatching(id.NewPrefix(id.Name{}, 0))

	transport := link.NewTransport(link.ConnInfo{Addr: cfg.Node.ListenAddr}, cache)

	var hardCoded []link.ConnInfo
	for _, addr := range cfg.Bootstrap.Contacts {
		hardCoded = append(hardCoded, link.ConnInfo{Addr: addr})
	}
	if len(hardCoded) > 0 {
		for _, c := range hardCoded {
			if err := cache.Remember(c); err != nil {
				log.Warn("failed to seed contact cache", "contact", c, "err", err)
			}
		}
	}

	sh := lifecycle.NewShared(self, transport)
	sh.SetJoinTimeout(time.Duration(cfg.Bootstrap.JoinTimeout))
	initial := lifecycle.NewBootstrapping(sh, hardCoded, gen)
	acc := accumulator.New()
	eng := agreement.NewMock(self) // the Byzantine Agreement Engine is an external collaborator (spec.md §1)
	machine := lifecycle.NewMachine(initial, acc, eng)
	machine.SetQuorumFraction(cfg.Bootstrap.QuorumFraction)

	shutdown := &co.Signal{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		shutdown.Broadcast("os signal")
		cancel()
	}()

	p2pMux := http.NewServeMux()
	p2pMux.Handle("/p2p", transport)
	p2pSrv := &http.Server{Addr: cfg.Node.ListenAddr, Handler: p2pMux}
	go func() {
		if err := p2pSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("p2p listener stopped", "err", err)
		}
	}()

	statusHandler := status.New(machine, acc)
	router := mux.NewRouter()
	statusHandler.Mount(router, "/v1")
	apiSrv := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: handlers.CombinedLoggingHandler(os.Stdout, router),
	}
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api listener stopped", "err", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{Addr: cfg.API.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics listener stopped", "err", err)
		}
	}()

	log.Info("sectiond started", "id", self, "listen", cfg.Node.ListenAddr)
	machine.Run(ctx)

	log.Info("shutting down")
	_ = p2pSrv.Close()
	_ = apiSrv.Close()
	_ = metricsSrv.Close()
	transport.Close()

	return nil
}
