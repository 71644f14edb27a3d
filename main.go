package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alimasry/heimer/config"
	"github.com/alimasry/heimer/history"
	"github.com/alimasry/heimer/internal/logging"
	"github.com/alimasry/heimer/lifecycle"
	"github.com/alimasry/heimer/ot"
	"github.com/alimasry/heimer/server"
	"github.com/alimasry/heimer/settings"
	"github.com/alimasry/heimer/store"
	"github.com/alimasry/heimer/tui"
)

const appName = "Heimer"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run wires the application and returns the process exit code. Deferred
// cleanup (log file, backend, signal handler) runs before main exits.
func run(args []string) int {
	flags := flag.NewFlagSet("heimer", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to config file (default $HEIMER_CONFIG or the user config dir)")
	serve := flags.Bool("serve", false, "serve the document to WebSocket clients instead of the terminal UI")
	addr := flags.String("addr", "", "HTTP listen address for -serve (overrides server.addr)")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: heimer [flags] [file]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Print(err)
		return 1
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Print(err)
		return 1
	}
	logger, err := logging.New(cfg.Log.Path, level)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg.Store, cfg.Editor.Extension)
	if err != nil {
		logger.Error("open backend", "backend", cfg.Store.Backend, "err", err)
		log.Print(err)
		return 1
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logger.Warn("close backend", "err", err)
		}
	}()
	logger.Info("backend ready", "backend", cfg.Store.Backend, "cache", cfg.Store.Cache)

	ws := store.NewWorkspace(backend, logger.With("component", "workspace"))
	hist := history.New(ws, cfg.Editor.HistoryLimit)

	prefs, err := settings.Load(cfg.Settings.Path, logger.With("component", "settings"))
	if err != nil {
		logger.Error("load settings", "path", cfg.Settings.Path, "err", err)
		log.Print(err)
		return 1
	}
	window := prefs.Group(cfg.Settings.Group)

	identity := lifecycle.Identity{Name: appName, Version: version, Untitled: cfg.Editor.Untitled}
	ctrl := lifecycle.NewController(hist, ws, lifecycle.Options{
		Identity:  identity,
		Extension: cfg.Editor.Extension,
		Recent:    window,
		Logger:    logger.With("component", "lifecycle"),
	})

	if *serve {
		err = runServer(ctx, cfg.Server.Addr, ctrl, hist, ws, logger.Logger, flags.Arg(0))
	} else {
		err = runTUI(ctx, ctrl, hist, ws, identity, window, logger.Logger, flags.Arg(0))
	}
	if err != nil {
		logger.Error("exit", "err", err)
		log.Print(err)
		return 1
	}
	return 0
}

// openBackend builds the configured document backend. The returned close
// function is always non-nil.
func openBackend(ctx context.Context, cfg config.StoreConfig, ext string) (store.Backend, func() error, error) {
	var (
		backend store.Backend
		closer  = func() error { return nil }
	)
	switch cfg.Backend {
	case "memory":
		backend = store.NewMemoryStore()
	case "file":
		backend = store.NewFileStore(cfg.Dir, ext)
	case "sqlite":
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = s, s.Close
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		backend, closer = store.NewFirestoreStore(client, cfg.FirestoreCollection), client.Close
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Cache {
		backend = store.NewCachedStore(backend)
	}
	return backend, closer, nil
}

// startDocument opens the document named on the command line, or starts an
// untitled one when there is none or it cannot be opened.
func startDocument(ctx context.Context, ctrl *lifecycle.Controller, arg string) {
	if arg != "" {
		path, err := filepath.Abs(arg)
		if err != nil {
			path = arg
		}
		if ctrl.Open(ctx, path) == nil {
			return
		}
	}
	ctrl.NewDocument()
}

func runTUI(ctx context.Context, ctrl *lifecycle.Controller, hist *history.History, ws *store.Workspace,
	id lifecycle.Identity, window *settings.Group, logger *slog.Logger, arg string) error {
	m := tui.New(ctrl, hist, ws, tui.Options{Identity: id, Window: window, Logger: logger})
	startDocument(ctx, ctrl, arg)
	m.Refresh()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, addr string, ctrl *lifecycle.Controller, hist *history.History, ws *store.Workspace,
	logger *slog.Logger, arg string) error {
	startDocument(ctx, ctrl, arg)

	session := server.NewSession(ctrl, hist, ws, &ot.JupiterEngine{}, logger)
	go session.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: server.NewHandler(session, logger)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on %s", addr)
	logger.Info("serving", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
