package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

type modelFunc func(ctx context.Context, tokens []int) ([]float32, error)

func (f modelFunc) NextLogits(ctx context.Context, tokens []int) ([]float32, error) {
	return f(ctx, tokens)
}

// scriptModel peaks the logits at script[step] where step counts the tokens
// generated after a prompt of promptLen tokens. Past the script it peaks at eos.
type scriptModel struct {
	vocab     int
	promptLen int
	script    []int
	eos       int
	calls     atomic.Int32
}

func (m *scriptModel) NextLogits(_ context.Context, tokens []int) ([]float32, error) {
	m.calls.Add(1)
	logits := make([]float32, m.vocab)
	next := m.eos
	if step := len(tokens) - m.promptLen; step >= 0 && step < len(m.script) {
		next = m.script[step]
	}
	logits[next] = 10
	return logits, nil
}

// vocabTokenizer maps ids to fixed strings; the last id is the special EOS.
type vocabTokenizer struct {
	vocab []string
}

func newVocabTokenizer(words ...string) *vocabTokenizer {
	return &vocabTokenizer{vocab: append(words, "</s>")}
}

func (t *vocabTokenizer) EOS() int              { return len(t.vocab) - 1 }
func (t *vocabTokenizer) IsSpecial(id int) bool { return id == t.EOS() }

func (t *vocabTokenizer) Decode(id int) ([]byte, error) {
	if id < 0 || id >= len(t.vocab) {
		return nil, fmt.Errorf("unknown token %d", id)
	}
	return []byte(t.vocab[id]), nil
}

// Encode greedily matches the longest vocabulary entry.
func (t *vocabTokenizer) Encode(text string) ([]int, error) {
	var out []int
	for text != "" {
		best, bestLen := -1, 0
		for id, w := range t.vocab[:t.EOS()] {
			if len(w) > bestLen && strings.HasPrefix(text, w) {
				best, bestLen = id, len(w)
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("cannot encode %q", text)
		}
		out = append(out, best)
		text = text[bestLen:]
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func uniformModel(vocab int) modelFunc {
	return func(context.Context, []int) ([]float32, error) {
		return make([]float32, vocab), nil
	}
}
