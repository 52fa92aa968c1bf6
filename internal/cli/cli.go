// Package cli implements bonusctl, the operator command line for the bonus
// board: admin key handling, bonus CRUD, Top Guns and a queue watcher.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/okian/bonusboard/internal/adapters/repository"
	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/config"
	"github.com/okian/bonusboard/pkg/logger"
)

// ErrUsage is returned for unknown commands and missing flags.
var ErrUsage = errors.New("usage error")

const defaultDBPath = "bonusctl.db"

// Env carries the process surroundings so commands can be tested.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	// Now replaces time.Now for range resolution.
	Now func() time.Time
}

// Options are the global flags shared by every command.
type Options struct {
	BackendURL string
	DBPath     string
	Verbose    bool
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":   {"store the admin key", runLogin},
	"logout":  {"forget the admin key", runLogout},
	"list":    {"list bonus records", runList},
	"save":    {"create or update a bonus", runSave},
	"delete":  {"delete a bonus by id", runDelete},
	"topguns": {"print the Top Guns ranking", runTopGuns},
	"watch":   {"poll the queue and print notifications", runWatch},
}

// app bundles what a command needs.
type app struct {
	env   Env
	opts  Options
	cfg   *config.Config
	store repository.Store
	svc   *service.Service
	log   logger.Logger
}

// Run parses args (without the program name) and executes one command.
func Run(ctx context.Context, env Env, args []string) error {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	if env.Now == nil {
		env.Now = time.Now
	}

	var opts Options
	fs := flag.NewFlagSet("bonusctl", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.StringVar(&opts.BackendURL, "url", "", "Backend base URL (default from BONUS_BACKEND_URL or config)")
	fs.StringVar(&opts.DBPath, "db", defaultDBPath, "SQLite file holding the admin key and seen sets")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")
	fs.Usage = func() { ShowHelp(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		ShowHelp(env.Stderr)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	name := rest[0]
	if name == "help" {
		ShowHelp(env.Stdout)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}

	a, err := setup(ctx, env, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return cmd.run(ctx, a, rest[1:])
}

func setup(ctx context.Context, env Env, opts Options) (*app, error) {
	if err := logger.InitWithFormat(env.Stderr, logger.FormatText); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.BackendURL != "" {
		cfg.BackendURL = opts.BackendURL
	}
	cfg.StoreDriver = repository.DriverSQLite
	cfg.SQLitePath = opts.DBPath

	st, err := repository.Open(ctx, repository.DriverSQLite, repository.WithSQLitePath(opts.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.DBPath, err)
	}

	return &app{
		env:   env,
		opts:  opts,
		cfg:   cfg,
		store: st,
		log:   logger.Get().Named("bonusctl"),
	}, nil
}

// newService builds the Service over the command's store. extra options, such
// as a sink, are applied last.
func (a *app) newService(extra ...service.Option) *service.Service {
	opts := []service.Option{
		service.WithConfig(a.cfg),
		service.WithStore(a.store),
		service.WithClock(a.env.Now),
		service.WithLogger(a.log),
	}
	a.svc = service.New(append(opts, extra...)...)
	return a.svc
}

func (a *app) close(ctx context.Context) {
	if a.svc != nil {
		a.svc.Stop()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "store close", logger.Error(err))
	}
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.env.Stdout, format, args...)
}

// ShowHelp prints usage information for bonusctl.
func ShowHelp(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(`bonusctl - operator tool for the bonus board
============================================

Usage:
  bonusctl [global options] <command> [command options]

Global options:
  -url string
        Backend base URL (default from BONUS_BACKEND_URL or config)
  -db string
        SQLite file holding the admin key and seen sets (default "bonusctl.db")
  -verbose
        Enable debug logging

Commands:
`)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-8s %s\n", name, commands[name].summary)
	}
	b.WriteString(`
Examples:
  bonusctl login -key s3cret
  bonusctl list -mode week -team Sharks
  bonusctl save -date 2026-10-14 -qualifier "Jane Doe" -team Sharks -amount 150
  bonusctl delete -id 42
  bonusctl topguns -period this_month
  bonusctl watch -popup 2s
`)
	_, _ = io.WriteString(w, b.String())
}
