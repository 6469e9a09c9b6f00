package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/procreceive/internal/config"
	"github.com/danmuck/procreceive/internal/protocol"
	"github.com/danmuck/procreceive/internal/pullid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	gitDir     string
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "proc-receive: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "proc-receive",
		Short: "Divert pushes into numbered integration branches",
		Long: `proc-receive speaks git's proc-receive hook protocol on stdin/stdout.
Every push is applied to refs/heads/for/<base>/pr<N> instead of the
requested ref, where N comes from a counter shared by all invocations
against the repository.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHook(cmd.Context(), opts, stdin, stdout, stderr, os.Args)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $"+config.EnvConfig+", then <git-dir>/"+config.FileName+")")
	flags.StringVar(&opts.gitDir, "git-dir", "", "repository control directory (default $GIT_DIR, then the working directory)")

	root.AddCommand(newPullIDCmd(opts), newVersionCmd())
	return root
}

func loadConfig(opts *rootOptions) (config.HookConfig, error) {
	cfg, err := config.Load(config.Locate(opts.configPath, opts.gitDir))
	if err != nil {
		return config.HookConfig{}, err
	}
	if opts.gitDir != "" {
		cfg.GitDir = opts.gitDir
	}
	return cfg, nil
}

func newPullIDCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull-id",
		Short: "Print the last allocated pull id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cur, err := pullid.New(cfg.CounterFile(), zerolog.Nop()).Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cur)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proc-receive %s (protocol version %s, %s)\n",
				version, protocol.Version, protocol.CapPushOptions)
		},
	}
}
