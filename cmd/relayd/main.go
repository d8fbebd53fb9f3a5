/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	relayd "github.com/btnmasher/relayd"

	"github.com/sirupsen/logrus"
)

func main() {
	port, password := parseArgs(os.Args)

	mainContext, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	wg := conc.NewWaitGroup()
	defer wg.Wait()

	shutdownTimeout := 30 * time.Second
	logger := logrus.New()

	server := relayd.NewServer(
		relayd.WithHostname("relayd.localhost.net"),
		relayd.WithNetwork("relaynet"),
		relayd.WithPort(port),
		relayd.WithPassword(password),
		relayd.WithLogger(logger),
		relayd.WithLogLevel(logrus.DebugLevel),
		relayd.WithDefaultLogFormatter(),
		relayd.WithGracefulShutdown(mainContext, shutdownTimeout),
	)

	wg.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, relayd.ErrServerClosed) {
			logger.Fatal(fmt.Errorf("failed to start server: %w", err))
		}
	})

	log := logger.WithField("component", "main")
	killSignals := make(chan os.Signal, 1)
	signal.Notify(killSignals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-killSignals
		log.Infof("initializing server shutdown, received signal: %s", sig)
		shutdown()
		sig = <-killSignals
		log.Fatalf("forcefully shutting down server, received signal: %s", sig)
	}()
}

// parseArgs implements spec.md 6's invocation contract: a TCP port and a
// server password. A missing argument, a non-numeric port, or a port
// outside 1..65535 prints a usage line and exits 1 — the only place
// os.Exit appears in this module.
func parseArgs(args []string) (int, string) {
	if len(args) != 3 {
		usage()
	}

	port, err := strconv.Atoi(args[1])
	if err != nil || port < 1 || port > 65535 {
		usage()
	}

	password := args[2]
	if password == "" {
		usage()
	}

	return port, password
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: relayd <port> <password>")
	os.Exit(1)
}
