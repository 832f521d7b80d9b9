// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Command ecusim runs a UDS (ISO 14229) ECU diagnostic simulator over an
// ISO-TP (ISO 15765-2) transport, either a real SocketCAN interface or an
// in-memory loopback transport for local testing.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/thinkgos/udsecusim/internal/config"
	"github.com/thinkgos/udsecusim/internal/did"
	"github.com/thinkgos/udsecusim/internal/dispatcher"
	"github.com/thinkgos/udsecusim/internal/download"
	"github.com/thinkgos/udsecusim/internal/dtc"
	"github.com/thinkgos/udsecusim/internal/isotp"
	"github.com/thinkgos/udsecusim/internal/logging"
	"github.com/thinkgos/udsecusim/internal/metrics"
	"github.com/thinkgos/udsecusim/internal/service"
	"github.com/thinkgos/udsecusim/internal/simulator"
)

func main() {
	var (
		configPath  = pflag.String("config", "", "Path to the YAML configuration file.")
		loopback    = pflag.Bool("loopback", false, "Use an in-memory transport instead of SocketCAN, for local smoke-testing.")
		canIface    = pflag.String("can-iface", "", "SocketCAN interface name, overriding the config file.")
		rxID        = pflag.Uint32("rxid", 0, "CAN ID this ECU listens on, overriding the config file.")
		txID        = pflag.Uint32("txid", 0, "CAN ID this ECU responds on, overriding the config file.")
		metricsAddr = pflag.String("metrics-addr", "", "Listen address for the /metrics HTTP endpoint, overriding the config file.")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ecusim:", err)
		os.Exit(1)
	}
	if *canIface != "" {
		cfg.CAN.Channel = *canIface
	}
	if *rxID != 0 {
		cfg.CAN.RxID = *rxID
	}
	if *txID != 0 {
		cfg.CAN.TxID = *txID
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	logWriter, err := openLogOutput(cfg.Logging.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ecusim:", err)
		os.Exit(1)
	}
	log := logging.New(logWriter, logging.LevelFromString(cfg.Logging.Level))

	addr := isotp.Address{RxID: cfg.CAN.RxID, TxID: cfg.CAN.TxID}
	conn, err := dialCAN(*loopback, cfg.CAN.Channel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ecusim:", err)
		os.Exit(1)
	}
	stack := isotp.NewStack(conn, addr)
	defer stack.Close()

	reg := metrics.New(prometheus.DefaultRegisterer)

	d := dispatcher.New(dispatcher.Deps{
		DIDTable: did.NewTable(),
		DTCStore: dtc.NewStore(),
		Download: download.New(),
		Security: &service.SecurityState{},
		Log:      log,
		Metrics:  reg,
	})

	sim := simulator.New(stack, d, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go serveMetrics(cfg.Metrics.Addr, log)

	log.Info(ctx, "ecusim: starting receive loop",
		"channel", cfg.CAN.Channel, "rxid", fmt.Sprintf("0x%03X", cfg.CAN.RxID), "txid", fmt.Sprintf("0x%03X", cfg.CAN.TxID))

	if err := sim.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "ecusim:", err)
		os.Exit(1)
	}
}

// openLogOutput resolves the logging.output config value to a writer:
// "", "stdout" go to os.Stdout, "stderr" to os.Stderr, anything else is
// opened/created as an append-only file path.
func openLogOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("ecusim: open log output %s: %w", output, err)
		}
		return f, nil
	}
}

func dialCAN(loopback bool, iface string) (isotp.CANConn, error) {
	if loopback {
		// The peer end isn't wired to anything here; --loopback exists so the
		// receive loop and dispatcher can be started without a CAN bus at
		// all, for smoke-testing the rest of the process (metrics, logging,
		// config loading).
		a, _ := isotp.NewLoopbackPair()
		return a, nil
	}
	return isotp.NewSocketCANConn(iface)
}

func serveMetrics(addr string, log logging.Log) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error(context.Background(), "ecusim: metrics server stopped", "error", err)
	}
}
