// bbsengine is a backend engine for desktop BBS clients targeting
// 2channel-lineage textboard networks (5ch.net, bbspink.com, Shitaraba/JBBS,
// Machi BBS).
//
// Startup sequence:
//  1. Load configuration (JSON file or defaults).
//  2. Construct the engine (HTTP client, cookie jar, proxy manager, auth
//     manager, cache store, post engine, NG engine, favorites tree, history
//     lists, round scheduler).
//  3. Load persisted state (cookies.txt, proxy.ini, favorites.json).
//  4. Register every RPC channel against the engine.
//  5. Serve the RPC surface over stdio until the input stream closes or an
//     OS signal arrives.
//  6. Perform a clean shutdown, persisting cookies, proxy config, and
//     favorites.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/roflsunriz/VBBB-sub002/config"
	"github.com/roflsunriz/VBBB-sub002/internal/engine"
	"github.com/roflsunriz/VBBB-sub002/internal/rpc"
)

func main() {
	// ── Flags ──────────────────────────────────────────────────────────────
	configFile := flag.String("config", "", "Path to JSON config file (optional; uses defaults if omitted)")
	flag.Parse()

	// ── Configuration ──────────────────────────────────────────────────────
	var cfg *config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bbsengine: failed to load config from %q: %v\n", *configFile, err)
			os.Exit(1)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "bbsengine: failed to create data dir %q: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	// ── Engine ─────────────────────────────────────────────────────────────
	eng := engine.New(cfg)
	eng.Logger.Info("bbsengine", "starting up")

	if err := eng.LoadPersisted(); err != nil {
		eng.Logger.Errorf("bbsengine", "failed to load persisted state: %v", err)
		os.Exit(1)
	}
	eng.Logger.Info("bbsengine", "persisted state loaded")

	reg := rpc.NewRegistry()
	eng.RegisterHandlers(reg)
	eng.Logger.Infof("bbsengine", "registered %d RPC channels", len(reg.Channels()))

	// ── RPC server ─────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- rpc.Serve(ctx, reg, os.Stdin, os.Stdout)
	}()

	// ── Graceful shutdown ──────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		eng.Logger.Infof("bbsengine", "received signal %s; shutting down", sig)
		cancel()
		<-serveErrCh
	case err := <-serveErrCh:
		if err != nil {
			eng.Logger.Errorf("bbsengine", "rpc server error: %v", err)
		}
	}

	shutdown(eng)
}

// shutdown persists every component with on-disk state. Errors are logged,
// not fatal: a failed write here must not prevent the process from exiting.
func shutdown(eng *engine.Engine) {
	if err := eng.Jar.Save(filepath.Join(eng.Config.DataDir, "cookies.txt")); err != nil {
		eng.Logger.Errorf("bbsengine", "failed to save cookies: %v", err)
	}
	if eng.Config.ProxyFile != "" {
		if err := eng.ProxyManager.Save(eng.Config.ProxyFile); err != nil {
			eng.Logger.Errorf("bbsengine", "failed to save proxy config: %v", err)
		}
	}
	if err := eng.Favorites.Save(); err != nil {
		eng.Logger.Errorf("bbsengine", "failed to save favorites: %v", err)
	}
	eng.Round.Stop()
	eng.Logger.Info("bbsengine", "shut down cleanly")
}
