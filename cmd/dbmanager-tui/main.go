package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/config"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
	"github.com/Azahorscak/dbmanager-tui/internal/store"
	"github.com/Azahorscak/dbmanager-tui/internal/tui"
)

type options struct {
	secret     string
	kubeconfig string
	console    string
	target     string
	readOnly   bool
	logFile    string
	debug      bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("dbmanager-tui", flag.ContinueOnError)
	fs.StringVar(&o.secret, "secret", "", "Kubernetes secret holding the backend credentials, as namespace/name")
	fs.StringVar(&o.kubeconfig, "kubeconfig", "", "path to a kubeconfig file (defaults to in-cluster, then ~/.kube/config)")
	fs.StringVar(&o.console, "config", "console.yaml", "path to the console file")
	fs.StringVar(&o.target, "target", "", "target to open initially")
	fs.BoolVar(&o.readOnly, "read-only", false, "disable edits, toggles and adds")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	fs.BoolVar(&o.debug, "debug", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.secret == "" {
		return o, errors.New("--secret is required")
	}
	return o, nil
}

func newLogger(o options) (*slog.Logger, func() error, error) {
	if o.logFile == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f.Close, nil
}

func run(args []string) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(o)
	if err != nil {
		return err
	}
	defer closeLog()

	console, err := config.LoadConsole(o.console)
	if err != nil {
		return err
	}
	reg, err := console.Registry()
	if err != nil {
		return err
	}
	if o.target != "" && !console.HasTarget(o.target) {
		return fmt.Errorf("unknown target %q", o.target)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	creds, err := config.Load(ctx, o.secret, o.kubeconfig)
	if err != nil {
		return err
	}

	baseURL := console.BaseURL
	if creds.BaseURL != "" {
		baseURL = creds.BaseURL
	}
	if baseURL == "" {
		return errors.New("no backend base URL: set base_url in the console file or base-url in the secret")
	}

	client := api.NewClient(baseURL, creds.APIToken, api.WithLogger(logger.With("component", "api")))
	provider := schema.NewProvider(reg, client, schema.WithLogger(logger.With("component", "schema")))

	deps := tui.Deps{
		Store:    store.New(store.State{Target: o.target}),
		Provider: provider,
		Backend:  client,
		Limit:    console.Limit,
		Targets:  console.TargetNames(),
		Logger:   logger,
		ReadOnly: o.readOnly,
	}

	logger.Info("starting", "base_url", baseURL, "targets", len(deps.Targets), "read_only", o.readOnly)
	_, err = tea.NewProgram(tui.New(deps), tea.WithAltScreen()).Run()
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "dbmanager-tui:", err)
		os.Exit(1)
	}
}
