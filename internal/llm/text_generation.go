package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"flamed/pkg/types"
)

// Summary describes a completed request. It is handed to the observer
// registered with WithObserver.
type Summary struct {
	Candidates      int
	Failed          int
	GeneratedTokens int // over all successful candidates
	FinishReason    types.FinishReason
	Duration        time.Duration
}

// Option configures a TextGeneration.
type Option func(*TextGeneration)

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(g *TextGeneration) { g.log = l }
}

// WithObserver registers fn to be called after every successful request.
func WithObserver(fn func(Summary)) Option {
	return func(g *TextGeneration) { g.observe = fn }
}

// TextGeneration validates requests and runs their best_of candidates against
// one model and tokenizer. It holds no per-request state and is safe for
// concurrent use.
type TextGeneration struct {
	model   Model
	tok     Tokenizer
	limits  Limits
	log     zerolog.Logger
	observe func(Summary)
}

// NewTextGeneration binds a model and tokenizer under the given limits.
func NewTextGeneration(model Model, tok Tokenizer, limits Limits, opts ...Option) *TextGeneration {
	g := &TextGeneration{model: model, tok: tok, limits: limits, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limits returns the bounds requests are validated against.
func (g *TextGeneration) Limits() Limits { return g.limits }

type request struct {
	inputs  string
	param   GenerateParameter
	prompt  []int
	prefill []types.PrefillToken
}

type candidate struct {
	index   int
	gen     *TextGenerator
	tokens  []types.Token
	logprob float64
	last    TextResult
	end     TextResult
	err     error
}

// Generate runs a non-streaming request and returns the best candidate.
func (g *TextGeneration) Generate(ctx context.Context, inputs string, params *types.GenerateParameters) (types.GenerateResponse, error) {
	start := time.Now()
	req, err := g.prepare(ctx, inputs, params)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	cands, err := g.run(ctx, req, nil)
	if err != nil {
		return types.GenerateResponse{}, err
	}

	best := winner(cands)
	resp := types.GenerateResponse{GeneratedText: req.text(best)}
	if req.param.Details {
		resp.Details = &types.Details{
			FinishReason:    best.end.Reason,
			GeneratedTokens: best.end.GeneratedTokens,
			Seed:            req.seed(best),
			Prefill:         req.prefill,
			Tokens:          best.tokens,
			BestOfSequences: req.bestOf(cands, best),
		}
	}
	g.report(start, cands, best)
	return resp, nil
}

// GenerateStream runs a streaming request. Every token of the primary
// candidate is passed to emit as it is produced; the last call carries the
// generated text and, when requested, the details. An emit error stops every
// candidate and is returned.
func (g *TextGeneration) GenerateStream(ctx context.Context, inputs string, params *types.GenerateParameters, emit func(types.StreamResponse) error) error {
	start := time.Now()
	req, err := g.prepare(ctx, inputs, params)
	if err != nil {
		return err
	}
	forward := func(r TextResult) error {
		return emit(types.StreamResponse{Token: r.Token})
	}
	cands, err := g.run(ctx, req, forward)
	if err != nil {
		return err
	}

	// The body reports the streamed primary; a failed primary is replaced by
	// the winner. best_of_sequences always lists the non-winners.
	best := winner(cands)
	reported := cands[0]
	if reported.err != nil {
		reported = best
	}
	text := req.text(reported)
	final := types.StreamResponse{Token: reported.last.Token, GeneratedText: &text}
	if req.param.Details {
		final.Details = &types.StreamDetails{
			FinishReason:    reported.end.Reason,
			GeneratedTokens: reported.end.GeneratedTokens,
			Seed:            req.seed(reported),
			BestOfSequences: req.bestOf(cands, best),
		}
	}
	g.report(start, cands, reported)
	return emit(final)
}

// Validate checks a request against the limits without querying the model.
func (g *TextGeneration) Validate(inputs string, params *types.GenerateParameters) error {
	_, err := g.validate(inputs, params)
	return err
}

// prepare validates the request and computes the prefill details. No
// generation query is issued for an invalid request.
func (g *TextGeneration) prepare(ctx context.Context, inputs string, params *types.GenerateParameters) (*request, error) {
	req, err := g.validate(inputs, params)
	if err != nil {
		return nil, err
	}
	if req.param.DecoderInputDetails {
		prefill, err := g.prefill(ctx, req.prompt)
		if err != nil {
			return nil, err
		}
		req.prefill = prefill
	}
	return req, nil
}

func (g *TextGeneration) validate(inputs string, params *types.GenerateParameters) (*request, error) {
	param, perr := NormalizeParameters(params, g.limits)
	var violations []string
	var ve *ValidationError
	if errors.As(perr, &ve) {
		violations = ve.Violations
	}

	var prompt []int
	if inputs != "" {
		ids, err := g.tok.Encode(inputs)
		if err != nil {
			violations = append(violations, fmt.Sprintf("`inputs` could not be tokenized: %v", err))
		}
		prompt = ids
	}
	if param.Truncate > 0 && len(prompt) > param.Truncate {
		prompt = prompt[len(prompt)-param.Truncate:]
	}
	violations = checkPrompt(violations, inputs, len(prompt), param, g.limits)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &request{inputs: inputs, param: param, prompt: prompt}, nil
}

// prefill echoes the prompt tokens. Each token after the first carries its
// log-probability given the preceding prompt tokens.
func (g *TextGeneration) prefill(ctx context.Context, prompt []int) ([]types.PrefillToken, error) {
	out := make([]types.PrefillToken, len(prompt))
	for i, id := range prompt {
		raw, err := g.tok.Decode(id)
		if err != nil {
			return nil, err
		}
		out[i] = types.PrefillToken{ID: id, Text: strings.ToValidUTF8(string(raw), "�")}
		if i == 0 {
			continue
		}
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		logits, err := g.model.NextLogits(ctx, prompt[:i:i])
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		if err != nil {
			return nil, &ModelError{Err: fmt.Errorf("prefill: %w", err)}
		}
		lp := tokenLogprob(logits, id)
		out[i].Logprob = &lp
	}
	return out, nil
}

// run drives every candidate to completion. Candidate 0 is forwarded to emit.
// Failures are isolated per candidate; the request only fails when every
// candidate failed.
func (g *TextGeneration) run(ctx context.Context, req *request, emit func(TextResult) error) ([]*candidate, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	cands := make([]*candidate, req.param.BestOf)
	for i := range cands {
		tokens := NewTokenGenerator(g.model, NewSampler(req.param, i), req.prompt, g.tok.EOS(), req.param.MaxNewTokens)
		c := &candidate{
			index: i,
			gen:   NewTextGenerator(tokens, g.tok, req.param.Stop, req.param.ReturnFullText),
		}
		cands[i] = c
		var fn func(TextResult) error
		if i == 0 {
			fn = emit
		}
		cctx := context.WithValue(egCtx, candidateKey{}, i)
		eg.Go(func() error { return c.run(cctx, fn) })
	}
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, err
	}

	var firstErr error
	alive := 0
	for _, c := range cands {
		if c.err != nil {
			if firstErr == nil {
				firstErr = c.err
			}
			g.log.Warn().Err(c.err).Int("candidate", c.index).Msg("candidate failed")
			continue
		}
		alive++
	}
	if alive == 0 {
		return nil, firstErr
	}
	return cands, nil
}

func (c *candidate) run(ctx context.Context, emit func(TextResult) error) error {
	for {
		r, err := c.gen.Next(ctx)
		if err != nil {
			if IsCancelled(err) {
				return err
			}
			var me *ModelError
			if errors.As(err, &me) {
				me.Candidate = c.index
			}
			c.err = err
			return nil
		}
		if r.End {
			c.end = r
			return nil
		}
		c.tokens = append(c.tokens, r.Token)
		c.logprob += float64(r.Token.Logprob)
		if r.Last {
			c.last = r
			continue
		}
		if emit != nil {
			if err := emit(r); err != nil {
				c.gen.Stop()
				return err
			}
		}
	}
}

// winner returns the successful candidate with the highest summed logprob,
// lowest index on ties.
func winner(cands []*candidate) *candidate {
	var best *candidate
	for _, c := range cands {
		if c.err != nil {
			continue
		}
		if best == nil || c.logprob > best.logprob {
			best = c
		}
	}
	return best
}

func (r *request) text(c *candidate) string {
	if r.param.ReturnFullText {
		return r.inputs + c.end.GeneratedText
	}
	return c.end.GeneratedText
}

func (r *request) seed(c *candidate) *uint64 {
	if !r.param.DoSample && !r.param.SeedSet {
		return nil
	}
	s := c.gen.Seed()
	return &s
}

// bestOf summarizes the successful candidates other than the reported one.
func (r *request) bestOf(cands []*candidate, reported *candidate) []types.BestOfSequence {
	if len(cands) < 2 {
		return nil
	}
	out := make([]types.BestOfSequence, 0, len(cands)-1)
	for _, c := range cands {
		if c == reported || c.err != nil {
			continue
		}
		out = append(out, types.BestOfSequence{
			GeneratedText:   r.text(c),
			FinishReason:    c.end.Reason,
			GeneratedTokens: c.end.GeneratedTokens,
			Seed:            r.seed(c),
			Prefill:         r.prefill,
			Tokens:          c.tokens,
		})
	}
	return out
}

func (g *TextGeneration) report(start time.Time, cands []*candidate, reported *candidate) {
	s := Summary{
		Candidates:   len(cands),
		FinishReason: reported.end.Reason,
		Duration:     time.Since(start),
	}
	for _, c := range cands {
		if c.err != nil {
			s.Failed++
			continue
		}
		s.GeneratedTokens += c.end.GeneratedTokens
	}
	tps := 0.0
	if secs := s.Duration.Seconds(); secs > 0 {
		tps = float64(reported.end.GeneratedTokens) / secs
	}
	g.log.Debug().
		Int("generated_tokens", reported.end.GeneratedTokens).
		Float64("tokens_per_second", tps).
		Int("best_of", s.Candidates).
		Str("finish_reason", string(s.FinishReason)).
		Msg("generation finished")
	if g.observe != nil {
		g.observe(s)
	}
}
