// SPDX-License-Identifier: MIT

// Command loadplace ranks candidate buses for a new load on a DC power-flow
// model, prints base-case flows and builds a unit-commitment schedule.
//
// Exit codes:
//
//	0 - a bus is recommended (rank), no overload (flow), load served (commit)
//	1 - no feasible bus, an overloaded branch or unserved load
//	2 - error (invalid input, unreadable case, structural failure)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/gridload/config"
	"github.com/katalvlaran/gridload/logger"
)

func main() {
	envErr := config.LoadDotEnv()
	log := logger.Init()
	if envErr != nil {
		log.Warn("Could not read .env file", "error", envErr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a := &app{out: os.Stdout, errOut: os.Stderr, log: log}
	err := newRootCmd(a).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
	os.Exit(a.exitCode)
}
