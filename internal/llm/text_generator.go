package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"flamed/pkg/types"
)

// TextResult is one result of a TextGenerator: a decoded chunk with its token,
// or the terminal End.
type TextResult struct {
	Text  string
	Token types.Token
	// Last marks the chunk whose token ended the sequence; End follows.
	Last bool

	End             bool
	Reason          types.FinishReason
	GeneratedTokens int
	GeneratedText   string
}

// TextGenerator decodes the tokens of one TokenGenerator into text and stops
// the sequence when a stop sequence appears in the decoded output.
type TextGenerator struct {
	tokens   *TokenGenerator
	tok      Tokenizer
	stop     []string
	keepStop bool

	pending []byte
	text    strings.Builder
	count   int

	state     genState
	reason    types.FinishReason
	generated string
}

// NewTextGenerator wraps tokens. With keepStop a matched stop sequence stays in
// the generated text.
func NewTextGenerator(tokens *TokenGenerator, tok Tokenizer, stop []string, keepStop bool) *TextGenerator {
	return &TextGenerator{tokens: tokens, tok: tok, stop: stop, keepStop: keepStop}
}

// Next advances the generator. The concatenation of every chunk Text equals
// the decoded token sequence; the End's GeneratedText is that text cut at a
// matched stop sequence.
func (g *TextGenerator) Next(ctx context.Context) (TextResult, error) {
	switch g.state {
	case stateFinished:
		return TextResult{}, ErrInvalidState
	case stateEnding:
		g.state = stateFinished
		return g.end(), nil
	}

	r, err := g.tokens.Next(ctx)
	if err != nil {
		g.state = stateFinished
		return TextResult{}, err
	}
	if r.End {
		// Only reachable when the token generator was driven outside this wrapper.
		g.state, g.reason, g.generated = stateFinished, r.Reason, g.text.String()
		return g.end(), nil
	}

	raw, err := g.tok.Decode(r.ID)
	if err != nil {
		g.state = stateFinished
		g.tokens.Stop()
		return TextResult{}, fmt.Errorf("decode token %d: %w", r.ID, err)
	}
	g.count++
	reason, last := g.tokens.Pending()

	token := types.Token{ID: r.ID, Logprob: r.Logprob, Special: g.tok.IsSpecial(r.ID)}
	var chunk string
	if token.Special {
		token.Text = string(raw)
		if last {
			chunk = g.flush(true)
		}
	} else {
		g.pending = append(g.pending, raw...)
		chunk = g.flush(last)
		token.Text = chunk
	}

	prevLen := g.text.Len()
	g.text.WriteString(chunk)

	if !(last && reason == types.FinishLength) {
		if cut, ok := g.matchStop(prevLen); ok {
			g.tokens.Stop()
			g.state, g.reason = stateEnding, types.FinishStopSequence
			g.generated = g.text.String()[:cut]
			return TextResult{Text: chunk, Token: token, Last: true}, nil
		}
	}
	if last {
		g.state, g.reason, g.generated = stateEnding, reason, g.text.String()
	}
	return TextResult{Text: chunk, Token: token, Last: last}, nil
}

// Stop finishes the generator and its token generator without an End.
func (g *TextGenerator) Stop() {
	g.state = stateFinished
	g.tokens.Stop()
}

// Seed returns the seed the candidate samples with.
func (g *TextGenerator) Seed() uint64 { return g.tokens.Seed() }

func (g *TextGenerator) end() TextResult {
	return TextResult{
		End:             true,
		Reason:          g.reason,
		GeneratedTokens: g.count,
		GeneratedText:   g.generated,
	}
}

// flush returns the longest decodable prefix of the pending bytes. With all
// set, trailing incomplete bytes are flushed as replacement characters.
func (g *TextGenerator) flush(all bool) string {
	n := len(g.pending)
	if !all {
		n = completePrefix(g.pending)
	}
	out := strings.ToValidUTF8(string(g.pending[:n]), "�")
	g.pending = append(g.pending[:0], g.pending[n:]...)
	return out
}

// matchStop searches the text added since prevLen for a stop sequence and
// returns where the generated text ends. Stop sequences are tried in order.
func (g *TextGenerator) matchStop(prevLen int) (int, bool) {
	text := g.text.String()
	for _, s := range g.stop {
		if s == "" {
			continue
		}
		start := max(0, prevLen-len(s)+1)
		if i := strings.Index(text[start:], s); i >= 0 {
			if g.keepStop {
				return start + i + len(s), true
			}
			return start + i, true
		}
	}
	return 0, false
}

// completePrefix returns the length of the longest prefix of b that does not
// end inside an incomplete UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
