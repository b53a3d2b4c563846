package llm

import (
	"context"
	"errors"
	"fmt"

	"flamed/pkg/types"
)

type genState int

const (
	stateRunning genState = iota
	stateEnding           // a token was emitted and its End is pending
	stateFinished
)

// TokenResult is one result of a TokenGenerator: a sampled token, or the
// terminal End carrying the finish reason.
type TokenResult struct {
	ID      int
	Logprob float32

	End    bool
	Reason types.FinishReason
}

// TokenGenerator drives one candidate at the token-id level. Each Next call
// while running issues exactly one model query and yields one token; the
// following call yields End once a stop condition fired.
type TokenGenerator struct {
	model   Model
	sampler *Sampler
	eos     int
	max     int

	context   []int
	promptLen int
	state     genState
	reason    types.FinishReason
}

// NewTokenGenerator starts a candidate from prompt. prompt is copied.
func NewTokenGenerator(model Model, sampler *Sampler, prompt []int, eos int, maxNewTokens int) *TokenGenerator {
	ctx := make([]int, len(prompt), len(prompt)+maxNewTokens)
	copy(ctx, prompt)
	return &TokenGenerator{
		model:     model,
		sampler:   sampler,
		eos:       eos,
		max:       maxNewTokens,
		context:   ctx,
		promptLen: len(prompt),
	}
}

// Next advances the generator. It fails with ErrInvalidState once finished,
// with an error matching IsCancelled when ctx ends (no End follows), and with
// a *ModelError wrapping the model's error on a failed query.
func (g *TokenGenerator) Next(ctx context.Context) (TokenResult, error) {
	switch g.state {
	case stateFinished:
		return TokenResult{}, ErrInvalidState
	case stateEnding:
		g.state = stateFinished
		return TokenResult{End: true, Reason: g.reason}, nil
	}

	if ctx.Err() != nil {
		g.state = stateFinished
		return TokenResult{}, cancelled(ctx)
	}
	logits, err := g.model.NextLogits(ctx, g.context[:len(g.context):len(g.context)])
	if ctx.Err() != nil {
		g.state = stateFinished
		return TokenResult{}, cancelled(ctx)
	}
	if err != nil {
		g.state = stateFinished
		return TokenResult{}, &ModelError{Err: err}
	}
	if len(logits) == 0 {
		g.state = stateFinished
		return TokenResult{}, &ModelError{Err: errors.New("model returned no logits")}
	}

	id, logprob := g.sampler.Sample(logits, g.context)
	if id < 0 || id >= len(logits) {
		g.state = stateFinished
		return TokenResult{}, fmt.Errorf("sampled token %d outside vocabulary of %d", id, len(logits))
	}
	g.context = append(g.context, id)

	switch {
	case g.Generated() >= g.max:
		g.state, g.reason = stateEnding, types.FinishLength
	case id == g.eos:
		g.state, g.reason = stateEnding, types.FinishEosToken
	}
	return TokenResult{ID: id, Logprob: logprob}, nil
}

// Pending reports the finish reason when the last token ended the sequence
// and its End has not been consumed yet.
func (g *TokenGenerator) Pending() (types.FinishReason, bool) {
	return g.reason, g.state == stateEnding
}

// Stop finishes the generator without an End result.
func (g *TokenGenerator) Stop() { g.state = stateFinished }

// Finished reports whether further Next calls fail.
func (g *TokenGenerator) Finished() bool { return g.state == stateFinished }

// Generated returns the number of tokens sampled so far.
func (g *TokenGenerator) Generated() int { return len(g.context) - g.promptLen }

// Tokens returns the generated token ids.
func (g *TokenGenerator) Tokens() []int { return g.context[g.promptLen:] }

// Seed returns the seed of the underlying sampler.
func (g *TokenGenerator) Seed() uint64 { return g.sampler.Seed() }
