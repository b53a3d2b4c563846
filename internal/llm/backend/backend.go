// Package backend provides the concrete Model and Tokenizer capabilities a
// model descriptor can select: the dummy and bigram models, and the bytes and
// tiktoken tokenizers.
package backend

import (
	"fmt"

	"flamed/internal/common/fsutil"
	"flamed/internal/llm"
	"flamed/pkg/types"
)

// Model variants.
const (
	ModelDummy  = "dummy"
	ModelBigram = "bigram"
)

// Tokenizer variants.
const (
	TokenizerBytes    = "bytes"
	TokenizerTiktoken = "tiktoken"
)

// Loaded is a model with the tokenizer it was built for.
type Loaded struct {
	Model     llm.Model
	Tokenizer llm.Tokenizer
	// VocabSize is the length of the logits the model returns.
	VocabSize int
}

// vocabSizer is implemented by every tokenizer of this package.
type vocabSizer interface {
	VocabSize() int
}

// NewTokenizer builds a tokenizer variant. encoding only applies to tiktoken
// and defaults to cl100k_base.
func NewTokenizer(kind, encoding string) (llm.Tokenizer, error) {
	switch kind {
	case "", TokenizerBytes:
		return NewBytes(), nil
	case TokenizerTiktoken:
		if encoding == "" {
			encoding = EncodingCL100kBase
		}
		return NewTikToken(encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", kind)
	}
}

// Load builds the capabilities described by m. A relative corpus path is
// resolved against the directory of the descriptor.
func Load(m types.Model) (*Loaded, error) {
	tok, err := NewTokenizer(m.Tokenizer, m.Encoding)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.ID, err)
	}
	vocab := tok.(vocabSizer).VocabSize()

	switch m.Backend {
	case "", ModelDummy:
		if m.VocabSize > 0 {
			if m.VocabSize <= tok.EOS() {
				return nil, fmt.Errorf("model %s: vocab_size %d does not cover eos token %d", m.ID, m.VocabSize, tok.EOS())
			}
			vocab = m.VocabSize
		}
		return &Loaded{Model: NewDummy(vocab), Tokenizer: tok, VocabSize: vocab}, nil
	case ModelBigram:
		if m.Corpus == "" {
			return nil, fmt.Errorf("model %s: bigram backend requires a corpus", m.ID)
		}
		corpus, err := fsutil.ResolveBeside(m.Path, m.Corpus)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.ID, err)
		}
		bg, err := TrainBigramFile(corpus, tok, vocab, m.Alpha)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.ID, err)
		}
		return &Loaded{Model: bg, Tokenizer: tok, VocabSize: vocab}, nil
	default:
		return nil, fmt.Errorf("model %s: unknown backend %q", m.ID, m.Backend)
	}
}
