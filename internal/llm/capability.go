package llm

import "context"

// Model maps a token-id context to next-token logits.
//
// Implementations are shared by every request served by an instance and must be
// safe for concurrent use. The context slice must not be retained or modified.
type Model interface {
	NextLogits(ctx context.Context, tokens []int) ([]float32, error)
}

// Tokenizer maps text to token ids and single token ids back to raw bytes.
// Decode may return a partial UTF-8 sequence when a codepoint spans tokens.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(id int) ([]byte, error)
	// EOS returns the end-of-sequence token id.
	EOS() int
	// IsSpecial reports whether id is a control token whose text is not part
	// of the generated output.
	IsSpecial(id int) bool
}

type candidateKey struct{}

// CandidateIndex returns the best_of candidate a NextLogits call is made for.
func CandidateIndex(ctx context.Context) (int, bool) {
	i, ok := ctx.Value(candidateKey{}).(int)
	return i, ok
}
