package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"flamed/pkg/types"
)

type generateFlags struct {
	model        string
	prompt       string
	maxNewTokens int
	temperature  float32
	topK         int
	topP         float32
	seed         uint64
	stop         []string
	bestOf       int
	details      bool
}

func newGenerateCmd(opts *options) *cobra.Command {
	gf := &generateFlags{}
	cmd := &cobra.Command{
		Use:     "generate [prompt]",
		Short:   "Stream one completion to stdout",
		Example: "  flamed generate --model tiny-bigram --prompt \"Once upon a time\" --max-new-tokens 40",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			prompt := gf.prompt
			if prompt == "" && len(args) == 1 {
				prompt = args[0]
			}
			if prompt == "" {
				return fmt.Errorf("a prompt is required (--prompt or argument)")
			}
			log := newLogger(cfg.LogLevel)
			mgr, err := newManager(cfg, log)
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			req := types.GenerateRequest{Inputs: prompt, Parameters: gf.parameters(cmd)}
			return runGenerate(ctx, mgr, gf.model, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVar(&gf.model, "model", "", "Model id (default: the default model)")
	f.StringVar(&gf.prompt, "prompt", "", "Prompt text")
	f.IntVar(&gf.maxNewTokens, "max-new-tokens", 0, "Maximum new tokens (default 50)")
	f.Float32Var(&gf.temperature, "temperature", 0, "Sampling temperature; enables sampling")
	f.IntVar(&gf.topK, "top-k", 0, "Top-k filter; enables sampling")
	f.Float32Var(&gf.topP, "top-p", 0, "Nucleus threshold; enables sampling")
	f.Uint64Var(&gf.seed, "seed", 0, "Sampling seed")
	f.StringArrayVar(&gf.stop, "stop", nil, "Stop sequence (repeatable)")
	f.IntVar(&gf.bestOf, "best-of", 0, "Independent candidates; requires sampling")
	f.BoolVar(&gf.details, "details", false, "Print generation details as JSON to stderr")
	return cmd
}

// parameters maps the flags that were set onto request parameters.
func (gf *generateFlags) parameters(cmd *cobra.Command) *types.GenerateParameters {
	p := &types.GenerateParameters{Stop: gf.stop, Details: gf.details}
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("max-new-tokens") {
		p.MaxNewTokens = &gf.maxNewTokens
	}
	if changed("temperature") {
		p.Temperature = &gf.temperature
	}
	if changed("top-k") {
		p.TopK = &gf.topK
	}
	if changed("top-p") {
		p.TopP = &gf.topP
	}
	if changed("seed") {
		p.Seed = &gf.seed
	}
	if changed("best-of") {
		p.BestOf = &gf.bestOf
		p.DoSample = true
	}
	return p
}

// streamer is the slice of the manager the generate command needs.
type streamer interface {
	GenerateStream(ctx context.Context, modelID string, req types.GenerateRequest, emit func(types.StreamResponse) error) error
}

func runGenerate(ctx context.Context, s streamer, model string, req types.GenerateRequest, stdout, stderr io.Writer) error {
	out := bufio.NewWriter(stdout)
	var final *types.StreamResponse
	err := s.GenerateStream(ctx, model, req, func(ev types.StreamResponse) error {
		if !ev.Token.Special {
			if _, err := out.WriteString(ev.Token.Text); err != nil {
				return err
			}
		}
		if ev.GeneratedText != nil {
			final = &ev
		}
		return out.Flush()
	})
	if err != nil {
		return err
	}
	if final != nil && !strings.HasSuffix(*final.GeneratedText, "\n") {
		out.WriteString("\n")
	}
	if err := out.Flush(); err != nil {
		return err
	}
	if final != nil && final.Details != nil {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		return enc.Encode(final.Details)
	}
	return nil
}
