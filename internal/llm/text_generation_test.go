package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamed/pkg/types"
)

func helloWorld() (*scriptModel, *vocabTokenizer) {
	tok := newVocabTokenizer(",", " ", "world", "Hello")
	m := &scriptModel{vocab: len(tok.vocab), promptLen: 1, script: []int{0, 1, 2}, eos: tok.EOS()}
	return m, tok
}

func collect(t *testing.T, g *TextGeneration, inputs string, p *types.GenerateParameters) []types.StreamResponse {
	t.Helper()
	var events []types.StreamResponse
	err := g.GenerateStream(context.Background(), inputs, p, func(r types.StreamResponse) error {
		events = append(events, r)
		return nil
	})
	require.NoError(t, err)
	return events
}

func TestTextGeneration_HelloWorldStream(t *testing.T) {
	m, tok := helloWorld()
	g := NewTextGeneration(m, tok, DefaultLimits())

	events := collect(t, g, "Hello", &types.GenerateParameters{
		MaxNewTokens:   ptr(3),
		ReturnFullText: ptr(true),
		Details:        true,
	})
	require.Len(t, events, 3)
	var texts []string
	for _, e := range events {
		texts = append(texts, e.Token.Text)
	}
	assert.Equal(t, []string{",", " ", "world"}, texts)
	assert.Nil(t, events[0].GeneratedText)
	assert.Nil(t, events[1].Details)

	final := events[2]
	require.NotNil(t, final.GeneratedText)
	assert.Equal(t, "Hello, world", *final.GeneratedText)
	require.NotNil(t, final.Details)
	assert.Equal(t, types.FinishLength, final.Details.FinishReason)
	assert.Equal(t, 3, final.Details.GeneratedTokens)
	assert.Nil(t, final.Details.Seed, "greedy unseeded requests report no seed")
}

func TestTextGeneration_HelloWorldGenerate(t *testing.T) {
	m, tok := helloWorld()
	g := NewTextGeneration(m, tok, DefaultLimits())

	resp, err := g.Generate(context.Background(), "Hello", &types.GenerateParameters{MaxNewTokens: ptr(3), Details: true})
	require.NoError(t, err)
	assert.Equal(t, ", world", resp.GeneratedText)
	require.NotNil(t, resp.Details)
	assert.Len(t, resp.Details.Tokens, resp.Details.GeneratedTokens)
	assert.Empty(t, resp.Details.BestOfSequences)
}

func TestTextGeneration_GreedyDeterminism(t *testing.T) {
	logits := func(_ context.Context, tokens []int) ([]float32, error) {
		out := make([]float32, 8)
		for i := range out {
			out[i] = float32((tokens[len(tokens)-1]*3 + i*5) % 7)
		}
		return out, nil
	}
	tok := newVocabTokenizer("a", "b", "c", "d", "e", "f", "g")
	g := NewTextGeneration(modelFunc(logits), tok, DefaultLimits())
	p := &types.GenerateParameters{MaxNewTokens: ptr(12)}

	a, err := g.Generate(context.Background(), "abc", p)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), "abc", p)
	require.NoError(t, err)
	assert.Equal(t, a.GeneratedText, b.GeneratedText)
}

func TestTextGeneration_SeededReproducible(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d", "e", "f", "g")
	g := NewTextGeneration(uniformModel(len(tok.vocab)), tok, DefaultLimits())
	p := &types.GenerateParameters{MaxNewTokens: ptr(20), DoSample: true, Seed: ptr(uint64(299792458)), Details: true}

	a, err := g.Generate(context.Background(), "a", p)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), "a", p)
	require.NoError(t, err)
	assert.Equal(t, a.Details.Tokens, b.Details.Tokens)
	require.NotNil(t, a.Details.Seed)
	assert.Equal(t, uint64(299792458), *a.Details.Seed)
}

func TestTextGeneration_BestOfIsolatesFailure(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d")
	var calls atomic.Int32
	m := modelFunc(func(context.Context, []int) ([]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("device lost")
		}
		return []float32{0.5, 0.1, 0.3, 0.2, -1}, nil
	})
	var summary Summary
	g := NewTextGeneration(m, tok, bestOfLimits(3), WithObserver(func(s Summary) { summary = s }))

	resp, err := g.Generate(context.Background(), "a", &types.GenerateParameters{
		BestOf:       ptr(3),
		DoSample:     true,
		Seed:         ptr(uint64(1)),
		MaxNewTokens: ptr(5),
		Details:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Details)
	require.Len(t, resp.Details.BestOfSequences, 1)

	sum := func(tokens []types.Token) float32 {
		var s float32
		for _, tk := range tokens {
			s += tk.Logprob
		}
		return s
	}
	other := resp.Details.BestOfSequences[0]
	assert.GreaterOrEqual(t, sum(resp.Details.Tokens), sum(other.Tokens))
	assert.Equal(t, 3, summary.Candidates)
	assert.Equal(t, 1, summary.Failed)
}

func bestOfLimits(n int) Limits {
	l := DefaultLimits()
	l.MaxBestOf = n
	return l
}

func sumLogprob(tokens []types.Token) float32 {
	var s float32
	for _, tk := range tokens {
		s += tk.Logprob
	}
	return s
}

// perCandidate answers NextLogits with the logits of the calling candidate.
func perCandidate(fn func(candidate int) ([]float32, error)) modelFunc {
	return func(ctx context.Context, _ []int) ([]float32, error) {
		i, _ := CandidateIndex(ctx)
		return fn(i)
	}
}

func TestTextGeneration_BestOfPrimaryFails(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d")
	m := perCandidate(func(i int) ([]float32, error) {
		switch i {
		case 0:
			return nil, errors.New("device lost")
		case 1:
			return []float32{12, 0, 0, 0, -50}, nil
		}
		return []float32{0, 0, 0, 0, -50}, nil
	})
	g := NewTextGeneration(m, tok, bestOfLimits(3))

	resp, err := g.Generate(context.Background(), "a", &types.GenerateParameters{
		BestOf:       ptr(3),
		DoSample:     true,
		Seed:         ptr(uint64(7)),
		MaxNewTokens: ptr(4),
		Details:      true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Details.BestOfSequences, 1)
	loser := resp.Details.BestOfSequences[0]
	assert.GreaterOrEqual(t, sumLogprob(resp.Details.Tokens), sumLogprob(loser.Tokens))
	require.NotNil(t, resp.Details.Seed)
	assert.Equal(t, uint64(8), *resp.Details.Seed, "candidate 1 wins")
}

func TestTextGeneration_StreamBestOfReportsNonWinners(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d")
	m := perCandidate(func(i int) ([]float32, error) {
		if i == 1 {
			return []float32{12, 0, 0, 0, -50}, nil
		}
		return []float32{0, 0, 0, 0, -50}, nil
	})
	g := NewTextGeneration(m, tok, DefaultLimits())

	events := collect(t, g, "a", &types.GenerateParameters{
		BestOf:       ptr(2),
		DoSample:     true,
		Seed:         ptr(uint64(0)),
		MaxNewTokens: ptr(4),
		Details:      true,
	})
	require.Len(t, events, 4)
	var streamed string
	for _, e := range events {
		streamed += e.Token.Text
	}
	final := events[len(events)-1]
	require.NotNil(t, final.GeneratedText)
	assert.Equal(t, streamed, *final.GeneratedText, "the body is the streamed primary")
	require.NotNil(t, final.Details)
	require.Len(t, final.Details.BestOfSequences, 1)

	other := final.Details.BestOfSequences[0]
	require.NotNil(t, other.Seed)
	assert.Equal(t, uint64(0), *other.Seed, "the losing primary is listed")
	assert.Equal(t, *final.GeneratedText, other.GeneratedText)
}

func TestTextGeneration_StreamPrimaryFailsFallsBackToWinner(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d")
	m := perCandidate(func(i int) ([]float32, error) {
		if i == 0 {
			return nil, errors.New("device lost")
		}
		return []float32{12, 0, 0, 0, -50}, nil
	})
	g := NewTextGeneration(m, tok, DefaultLimits())

	events := collect(t, g, "a", &types.GenerateParameters{
		BestOf:       ptr(2),
		DoSample:     true,
		Seed:         ptr(uint64(0)),
		MaxNewTokens: ptr(3),
		Details:      true,
	})
	require.Len(t, events, 1, "only the final event is sent")
	final := events[0]
	require.NotNil(t, final.GeneratedText)
	assert.Equal(t, "aaa", *final.GeneratedText)
	require.NotNil(t, final.Details)
	require.NotNil(t, final.Details.Seed)
	assert.Equal(t, uint64(1), *final.Details.Seed)
	assert.Empty(t, final.Details.BestOfSequences)
}

// badDecode fails to decode one token id.
type badDecode struct {
	*vocabTokenizer
	id int
}

func (t badDecode) Decode(id int) ([]byte, error) {
	if id == t.id {
		return nil, errors.New("corrupt vocabulary entry")
	}
	return t.vocabTokenizer.Decode(id)
}

func TestTextGeneration_DecodeFailureIsNotModelError(t *testing.T) {
	m, tok := helloWorld()
	g := NewTextGeneration(m, badDecode{vocabTokenizer: tok, id: 2}, DefaultLimits())

	_, err := g.Generate(context.Background(), "Hello", &types.GenerateParameters{MaxNewTokens: ptr(3)})
	require.Error(t, err)
	assert.False(t, IsModelError(err))
	assert.False(t, IsValidation(err))
}

func TestTextGeneration_BestOfWinnerByLogprob(t *testing.T) {
	tok := newVocabTokenizer("a", "b", "c", "d")
	g := NewTextGeneration(modelFunc(func(context.Context, []int) ([]float32, error) {
		return []float32{2, 1, 0.5, 0, -1}, nil
	}), tok, DefaultLimits())

	resp, err := g.Generate(context.Background(), "a", &types.GenerateParameters{
		BestOf:       ptr(2),
		DoSample:     true,
		Seed:         ptr(uint64(10)),
		MaxNewTokens: ptr(8),
		Details:      true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Details.BestOfSequences, 1)

	var win, lose float32
	for _, tk := range resp.Details.Tokens {
		win += tk.Logprob
	}
	for _, tk := range resp.Details.BestOfSequences[0].Tokens {
		lose += tk.Logprob
	}
	assert.GreaterOrEqual(t, win, lose)
	require.NotNil(t, resp.Details.BestOfSequences[0].Seed)
	assert.NotEqual(t, *resp.Details.Seed, *resp.Details.BestOfSequences[0].Seed)
}

func TestTextGeneration_SingleCandidateModelError(t *testing.T) {
	tok := newVocabTokenizer("a")
	boom := errors.New("boom")
	g := NewTextGeneration(modelFunc(func(context.Context, []int) ([]float32, error) {
		return nil, boom
	}), tok, DefaultLimits())

	_, err := g.Generate(context.Background(), "a", nil)
	require.Error(t, err)
	assert.True(t, IsModelError(err))
	assert.ErrorIs(t, err, boom)
}

func TestTextGeneration_AllCandidatesFail(t *testing.T) {
	tok := newVocabTokenizer("a")
	g := NewTextGeneration(modelFunc(func(context.Context, []int) ([]float32, error) {
		return nil, errors.New("down")
	}), tok, DefaultLimits())

	_, err := g.Generate(context.Background(), "a", &types.GenerateParameters{BestOf: ptr(2), DoSample: true})
	assert.True(t, IsModelError(err))
}

func TestTextGeneration_ValidationBeforeModel(t *testing.T) {
	m, tok := helloWorld()
	g := NewTextGeneration(m, tok, DefaultLimits())

	_, err := g.Generate(context.Background(), "", &types.GenerateParameters{
		MaxNewTokens: ptr(0),
		TopP:         ptr(float32(2)),
	})
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, 3)
	assert.Equal(t, int32(0), m.calls.Load())
}

func TestTextGeneration_StreamStopSequence(t *testing.T) {
	tok := newVocabTokenizer("go", "STOP", "end", "x")
	m := &scriptModel{vocab: len(tok.vocab), promptLen: 1, script: []int{0, 1, 2}, eos: tok.EOS()}
	g := NewTextGeneration(m, tok, DefaultLimits())

	events := collect(t, g, "x", &types.GenerateParameters{Stop: []string{"STOP"}, Details: true})
	require.Len(t, events, 2)
	final := events[1]
	assert.Equal(t, "go", *final.GeneratedText)
	assert.Equal(t, types.FinishStopSequence, final.Details.FinishReason)
	assert.Equal(t, 2, final.Details.GeneratedTokens)
	assert.Equal(t, int32(2), m.calls.Load(), "no query after the stop sequence")
}

func TestTextGeneration_CancelStopsCandidates(t *testing.T) {
	tok := newVocabTokenizer("a", "b")
	var calls atomic.Int32
	g := NewTextGeneration(modelFunc(func(context.Context, []int) ([]float32, error) {
		calls.Add(1)
		return []float32{1, 0, -5}, nil
	}), tok, DefaultLimits())

	ctx, cancel := context.WithCancel(context.Background())
	events := 0
	err := g.GenerateStream(ctx, "a", &types.GenerateParameters{MaxNewTokens: ptr(100)}, func(types.StreamResponse) error {
		events++
		if events == 3 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 3, events)
	assert.LessOrEqual(t, calls.Load(), int32(4))
}

func TestTextGeneration_EmitErrorStops(t *testing.T) {
	tok := newVocabTokenizer("a", "b")
	g := NewTextGeneration(uniformModel(3), tok, DefaultLimits())
	gone := errors.New("client gone")

	err := g.GenerateStream(context.Background(), "a", &types.GenerateParameters{
		BestOf:       ptr(2),
		DoSample:     true,
		TopK:         ptr(2),
		MaxNewTokens: ptr(50),
	}, func(types.StreamResponse) error { return gone })
	assert.ErrorIs(t, err, gone)
}

func TestTextGeneration_Prefill(t *testing.T) {
	m, tok := helloWorld()
	m.promptLen = 2
	g := NewTextGeneration(m, tok, DefaultLimits())

	resp, err := g.Generate(context.Background(), "Hello,", &types.GenerateParameters{
		MaxNewTokens:        ptr(1),
		Details:             true,
		DecoderInputDetails: true,
	})
	require.NoError(t, err)
	prefill := resp.Details.Prefill
	require.Len(t, prefill, 2)
	assert.Equal(t, "Hello", prefill[0].Text)
	assert.Nil(t, prefill[0].Logprob)
	require.NotNil(t, prefill[1].Logprob)
	assert.Equal(t, ",", prefill[1].Text)
	assert.Less(t, *prefill[1].Logprob, float32(0))
}

func TestTextGeneration_Truncate(t *testing.T) {
	tok := newVocabTokenizer("a", "b")
	var seen atomic.Int32
	g := NewTextGeneration(modelFunc(func(_ context.Context, tokens []int) ([]float32, error) {
		seen.Store(int32(len(tokens)))
		return []float32{1, 0, 0}, nil
	}), tok, Limits{MaxInputLength: 2, MaxTotalTokens: 3})

	_, err := g.Generate(context.Background(), "abab", &types.GenerateParameters{MaxNewTokens: ptr(1), Truncate: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, int32(2), seen.Load())
}
