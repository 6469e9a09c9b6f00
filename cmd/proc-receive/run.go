package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/danmuck/procreceive/internal/config"
	"github.com/danmuck/procreceive/internal/hook"
	"github.com/danmuck/procreceive/internal/logging"
	"github.com/danmuck/procreceive/internal/observability"
	"github.com/danmuck/procreceive/internal/pullid"
	"github.com/danmuck/procreceive/internal/refs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func runHook(ctx context.Context, opts *rootOptions, stdin io.Reader, stdout, stderr io.Writer, argv []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, closeLog, err := openLogger(cfg, uuid.NewString(), stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.LogArgs {
		observability.LogArgs(log, argv)
	}
	if cfg.LogEnv {
		observability.LogEnvironment(log, os.Environ())
	}

	engine := hook.New(
		hook.Config{
			RefNamespace: cfg.RefNamespace,
			BaseBranch:   cfg.BaseBranch,
			BaseOption:   cfg.BaseOption,
		},
		pullid.New(cfg.CounterFile(), log),
		refs.NewGitUpdater(cfg.GitBinary, cfg.GitDir, log),
		log,
	)

	started := time.Now()
	outcome, err := engine.Run(ctx, stdin, stdout)
	writeMetrics(cfg, log, outcome, err == nil, started)
	if err != nil {
		log.Error().Err(err).Msg("push rejected")
		return err
	}
	log.Info().
		Uint64("pull_id", outcome.PullID).
		Str("integration_ref", outcome.IntegrationRef).
		Int("commands", len(outcome.Commands)).
		Dur("elapsed", time.Since(started)).
		Msg("push diverted")
	return nil
}

// openLogger logs to the configured file, falling back to stderr when the
// file cannot be opened. A missing HOME is fatal.
func openLogger(cfg config.HookConfig, session string, stderr io.Writer) (zerolog.Logger, func(), error) {
	path, err := cfg.LogFilePath()
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	lc := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		lc.Level = lvl
	}
	logging.ApplyEnv(&lc)

	f, openErr := observability.OpenLogSink(path)
	if openErr != nil {
		log := observability.InitLogger("proc-receive", session, stderr, lc)
		log.Warn().Err(openErr).Str("path", path).Msg("log file unavailable, logging to stderr")
		return log, func() {}, nil
	}
	log := observability.InitLogger("proc-receive", session, f, lc)
	return log, func() { _ = f.Close() }, nil
}

func writeMetrics(cfg config.HookConfig, log zerolog.Logger, outcome hook.Outcome, ok bool, started time.Time) {
	if cfg.MetricsTextfile == "" {
		return
	}
	m := observability.NewPushMetrics()
	m.Observe(observability.PushRecord{
		PullID:   outcome.PullID,
		Commands: len(outcome.Commands),
		Success:  ok,
		Started:  started,
		Duration: time.Since(started),
	})
	if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
		log.Warn().Err(err).Str("path", cfg.MetricsTextfile).Msg("write metrics textfile")
	}
}
