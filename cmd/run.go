package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/app"
	"github.com/cfaprep/cfaprep/internal/backend"
	"github.com/cfaprep/cfaprep/internal/bank"
	"github.com/cfaprep/cfaprep/internal/config"
	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/shuffle"
	"github.com/cfaprep/cfaprep/internal/store"
)

// deps are the long-lived collaborators shared by every command.
type deps struct {
	logger  *slog.Logger
	service progress.Service
	closers []io.Closer
}

func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openLogger returns the logger for interactive commands, which write to the
// log file because the terminal belongs to the UI.
func openLogger(d *deps) error {
	f, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	d.closers = append(d.closers, f)
	d.logger = cfg.NewLogger(f)
	return nil
}

// openService builds the progress service: the remote one when a server is
// configured, otherwise the local bank and store.
func openService(ctx context.Context, d *deps) error {
	if !cfg.Offline() {
		client, err := progress.NewHTTPClient(progress.HTTPConfig{
			BaseURL: cfg.ServerURL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return err
		}
		d.service = progress.WithLogging(progress.WithRetry(client, cfg.Retry), d.logger)
		d.logger.Info("using remote progress service", "url", cfg.ServerURL)
		return nil
	}

	local, err := openLocal(ctx, d)
	if err != nil {
		return err
	}
	d.service = progress.WithLogging(local, d.logger)
	return nil
}

func openLocal(ctx context.Context, d *deps) (*backend.Local, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cat, err := bank.Load(dataDir)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	if cat.Len() == 0 {
		d.logger.Warn("question bank is empty", "dir", dataDir)
	}

	dsn := cfg.DBDSN
	if dsn == "" && cfg.DBDriver == config.DriverSQLite {
		if dsn, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.OpenDriver(ctx, cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.closers = append(d.closers, st)

	d.logger.Info("using local backend",
		"data_dir", dataDir, "questions", cat.Len(), "db_driver", cfg.DBDriver)
	return backend.NewLocal(cat, st, backend.WithLogger(d.logger)), nil
}

// runApp wires the dependencies and runs the TUI, opening start on top of
// the home screen when it is non-nil. Submissions still in flight when the
// UI exits are waited for.
func runApp(cmd *cobra.Command, start func(screen.Env) screen.Screen) error {
	ctx := cmd.Context()
	d := &deps{}
	defer d.Close()
	if err := openLogger(d); err != nil {
		return err
	}
	if err := openService(ctx, d); err != nil {
		return err
	}

	reporter := scoring.NewReporter(d.service, d.logger, cfg.ReportTimeout)
	env := screen.Env{
		Service:  d.service,
		Reporter: reporter,
		Logger:   d.logger,
		Shuffler: shuffle.New(),
	}
	var first screen.Screen
	if start != nil {
		first = start(env)
	}

	err := app.Run(ctx, env, first)
	if n := reporter.Pending(); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saving %d result(s)...\n", n)
	}
	reporter.Wait()
	return err
}
