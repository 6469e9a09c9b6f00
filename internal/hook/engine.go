// Package hook runs one proc-receive invocation: negotiate, read the
// pushed commands and options, divert them to a freshly numbered
// integration ref, and report back.
package hook

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/danmuck/procreceive/internal/protocol"
	"github.com/danmuck/procreceive/internal/refs"
	"github.com/rs/zerolog"
)

// Allocator hands out durable pull ids.
type Allocator interface {
	Allocate(ctx context.Context) (uint64, error)
}

// Config selects where pushes are diverted.
type Config struct {
	RefNamespace string
	BaseBranch   string
	// BaseOption is the push option that overrides BaseBranch.
	BaseOption string
}

// Outcome describes a completed invocation. An empty batch still consumes
// a pull id; its report is a lone flush.
type Outcome struct {
	Capabilities   protocol.CapList
	Commands       []protocol.Command
	Options        protocol.Options
	PullID         uint64
	IntegrationRef string
}

type Engine struct {
	cfg     Config
	alloc   Allocator
	updater refs.Updater
	log     zerolog.Logger
}

func New(cfg Config, alloc Allocator, updater refs.Updater, log zerolog.Logger) *Engine {
	if cfg.RefNamespace == "" {
		cfg.RefNamespace = refs.DefaultNamespace
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = refs.DefaultBaseBranch
	}
	return &Engine{
		cfg:     cfg,
		alloc:   alloc,
		updater: updater,
		log:     log.With().Str("component", "hook").Logger(),
	}
}

// Run serves one push read from r, writing replies to w. Output after the
// version advertisement is buffered and reaches w only once every command
// has been applied; any error aborts without a report.
func (e *Engine) Run(ctx context.Context, r io.Reader, w io.Writer) (Outcome, error) {
	var out Outcome
	bw := bufio.NewWriter(w)

	caps, err := protocol.Negotiate(r, bw)
	if err != nil {
		return out, fmt.Errorf("negotiate: %w", err)
	}
	out.Capabilities = caps
	e.log.Debug().Str("peer_caps", caps.String()).Msg("negotiated")

	cmds, err := protocol.ReadCommands(r)
	if err != nil {
		return out, fmt.Errorf("read commands: %w", err)
	}
	out.Commands = cmds
	for _, cmd := range cmds {
		e.log.Info().Str("ref", cmd.RefName).Str("old", cmd.OldOID).Str("new", cmd.NewOID).Msg("command")
	}

	opts, err := protocol.ReadOptions(r)
	if err != nil {
		return out, fmt.Errorf("read push options: %w", err)
	}
	out.Options = opts
	for k, v := range opts {
		e.log.Debug().Str("key", k).Str("value", v).Msg("push option")
	}

	base, err := e.baseBranch(opts)
	if err != nil {
		return out, err
	}

	id, err := e.alloc.Allocate(ctx)
	if err != nil {
		return out, fmt.Errorf("allocate pull id: %w", err)
	}
	out.PullID = id
	out.IntegrationRef = refs.IntegrationRef(e.cfg.RefNamespace, base, id)
	e.log.Info().Uint64("pull_id", id).Str("integration_ref", out.IntegrationRef).Msg("diverting push")

	if len(cmds) == 0 {
		e.log.Info().Msg("empty command batch")
		return out, protocol.WriteReport(bw, nil)
	}

	results := make([]protocol.Result, 0, len(cmds))
	for _, cmd := range cmds {
		if err := e.updater.UpdateRef(ctx, out.IntegrationRef, cmd.NewOID); err != nil {
			return out, fmt.Errorf("divert %s: %w", cmd.RefName, err)
		}
		results = append(results, protocol.Result{Command: cmd, IntegrationRef: out.IntegrationRef})
	}

	if err := protocol.WriteReport(bw, results); err != nil {
		return out, err
	}
	return out, nil
}

func (e *Engine) baseBranch(opts protocol.Options) (string, error) {
	if e.cfg.BaseOption == "" {
		return e.cfg.BaseBranch, nil
	}
	base, ok := opts[e.cfg.BaseOption]
	if !ok {
		return e.cfg.BaseBranch, nil
	}
	if err := refs.ValidateBranch(base); err != nil {
		return "", fmt.Errorf("push option %s: %w", e.cfg.BaseOption, err)
	}
	return base, nil
}
