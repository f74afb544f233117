package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/threefoldtech/piclaim/api"
	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/config"
	"github.com/threefoldtech/piclaim/persist"
	"github.com/threefoldtech/piclaim/supervisor"
)

// startDaemonCmd is a passthrough function for startDaemon, mirroring
// rivined/commands.go's startDaemonCmd/startDaemon split.
func startDaemonCmd(*cobra.Command, []string) {
	cfg, err := config.FromEnv()
	if err != nil {
		die(err)
	}
	if globalConfig.Port != "" {
		cfg.Port = globalConfig.Port
	}
	if globalConfig.WalletDBPath != "" {
		cfg.WalletDBPath = globalConfig.WalletDBPath
	}
	if globalConfig.BalanceDBPath != "" {
		cfg.BalanceDBPath = globalConfig.BalanceDBPath
	}

	if err := startDaemon(cfg); err != nil {
		die(err)
	}
}

// openStores opens the bolt-backed stores cfg names, falling back to the
// in-memory implementations when unconfigured (spec.md §9's persistence
// note: durability is opt-in).
func openStores(cfg config.Config) (persist.WalletStore, persist.BalanceStore, error) {
	var walletStore persist.WalletStore
	if cfg.WalletDBPath != "" {
		s, err := persist.OpenBoltWalletStore(cfg.WalletDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening wallet store: %w", err)
		}
		walletStore = s
	} else {
		walletStore = persist.NewMemoryWalletStore()
	}

	var balanceStore persist.BalanceStore
	if cfg.BalanceDBPath != "" {
		s, err := persist.OpenBoltBalanceStore(cfg.BalanceDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening balance store: %w", err)
		}
		balanceStore = s
	} else {
		balanceStore = persist.NewMemoryBalanceStore()
	}

	return walletStore, balanceStore, nil
}

// startDaemon wires the supervisor and HTTP API, then blocks until a kill
// signal is caught, generalizing rivined/daemon.go's startDaemon: a
// sequential, progress-printed load of every component followed by a
// signal-triggered, graceful shutdown.
func startDaemon(cfg config.Config) error {
	loadStart := time.Now()

	walletStore, balanceStore, err := openStores(cfg)
	if err != nil {
		return err
	}

	clk := clock.Real{}
	sup, err := supervisor.New(cfg, clk, walletStore, balanceStore)
	if err != nil {
		return fmt.Errorf("starting supervisor: %w", err)
	}

	a := api.New(sup, cfg, clk)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: a}

	servErrs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			servErrs <- err
			return
		}
		servErrs <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\rCaught stop signal, shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), supervisor.DefaultShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Println("error shutting down HTTP server:", err)
		}
		if err := sup.Close(supervisor.DefaultShutdownGrace); err != nil {
			fmt.Println("error shutting down supervisor:", err)
		}
		if err := walletStore.Close(); err != nil {
			fmt.Println("error closing wallet store:", err)
		}
		if err := balanceStore.Close(); err != nil {
			fmt.Println("error closing balance store:", err)
		}
	}()

	fmt.Printf("piclaimd listening on :%s (startup took %s)\n", cfg.Port, time.Since(loadStart))

	return <-servErrs
}
