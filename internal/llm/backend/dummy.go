package backend

import "context"

// Dummy is a deterministic stand-in model: the logits peak at the id following
// the last context token, wrapping around the vocabulary.
type Dummy struct {
	vocab int
}

func NewDummy(vocab int) *Dummy { return &Dummy{vocab: vocab} }

func (d *Dummy) NextLogits(ctx context.Context, tokens []int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logits := make([]float32, d.vocab)
	next := 0
	if n := len(tokens); n > 0 {
		next = (tokens[n-1] + 1) % d.vocab
	}
	logits[next] = 1
	return logits, nil
}
