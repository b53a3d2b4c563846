package backend

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"flamed/internal/llm"
)

const defaultAlpha = 0.1

// Bigram is a token bigram language model with add-alpha smoothing. It is
// immutable after training and safe for concurrent use.
type Bigram struct {
	vocab int
	alpha float64
	// counts[prev][next] over the training documents.
	counts map[int]map[int]float64
	totals map[int]float64
}

// TrainBigramFile trains a Bigram on the text file at path.
func TrainBigramFile(path string, tok llm.Tokenizer, vocab int, alpha float64) (*Bigram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return TrainBigram(string(data), tok, vocab, alpha)
}

// TrainBigram counts token transitions of corpus. Blank lines separate
// documents; every document ends with the tokenizer's EOS.
func TrainBigram(corpus string, tok llm.Tokenizer, vocab int, alpha float64) (*Bigram, error) {
	if alpha <= 0 {
		alpha = defaultAlpha
	}
	b := &Bigram{
		vocab:  vocab,
		alpha:  alpha,
		counts: make(map[int]map[int]float64),
		totals: make(map[int]float64),
	}
	docs := 0
	for _, doc := range strings.Split(strings.ReplaceAll(corpus, "\r\n", "\n"), "\n\n") {
		doc = strings.TrimSpace(doc)
		if doc == "" {
			continue
		}
		ids, err := tok.Encode(doc)
		if err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		ids = append(ids, tok.EOS())
		for i := 1; i < len(ids); i++ {
			if err := b.observe(ids[i-1], ids[i]); err != nil {
				return nil, err
			}
		}
		docs++
	}
	if docs == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}
	return b, nil
}

func (b *Bigram) observe(prev, next int) error {
	if prev < 0 || prev >= b.vocab || next < 0 || next >= b.vocab {
		return fmt.Errorf("token pair (%d, %d) outside vocabulary of %d", prev, next, b.vocab)
	}
	row := b.counts[prev]
	if row == nil {
		row = make(map[int]float64)
		b.counts[prev] = row
	}
	row[next]++
	b.totals[prev]++
	return nil
}

// NextLogits returns log-probabilities of the token following the last
// context token.
func (b *Bigram) NextLogits(ctx context.Context, tokens []int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty context")
	}
	prev := tokens[len(tokens)-1]
	denom := b.totals[prev] + b.alpha*float64(b.vocab)
	base := float32(math.Log(b.alpha / denom))

	logits := make([]float32, b.vocab)
	for i := range logits {
		logits[i] = base
	}
	for next, c := range b.counts[prev] {
		logits[next] = float32(math.Log((c + b.alpha) / denom))
	}
	return logits, nil
}

// VocabSize is the length of the returned logits.
func (b *Bigram) VocabSize() int { return b.vocab }
