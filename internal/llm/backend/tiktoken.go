package backend

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the GPT-4 / GPT-3.5-turbo encoding.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the GPT-3 / Codex encoding.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the older GPT-3 encoding.
	EncodingR50kBase = "r50k_base"
)

// TikToken adapts a tiktoken encoding. Decoding a single token yields its raw
// bytes, which may end inside a multi-byte codepoint.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding.
func NewTikToken(name string) (*TikToken, error) {
	switch name {
	case EncodingCL100kBase, EncodingP50kBase, EncodingR50kBase:
	default:
		return nil, fmt.Errorf("unsupported tiktoken encoding %q", name)
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", name, err)
	}
	return &TikToken{encoding: enc, name: name}, nil
}

// Encode does not allow special tokens in the input text.
func (t *TikToken) Encode(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

func (t *TikToken) Decode(id int) ([]byte, error) {
	if id < 0 || id >= t.VocabSize() {
		return nil, fmt.Errorf("token %d outside %s vocabulary", id, t.name)
	}
	return []byte(t.encoding.Decode([]int{id})), nil
}

// EOS returns <|endoftext|>.
func (t *TikToken) EOS() int {
	if t.name == EncodingCL100kBase {
		return 100257
	}
	return 50256
}

// IsSpecial covers <|endoftext|> and, for cl100k_base, the reserved range above
// the mergeable ranks.
func (t *TikToken) IsSpecial(id int) bool {
	if id == t.EOS() {
		return true
	}
	return t.name == EncodingCL100kBase && id >= 100256
}

// VocabSize includes the special tokens.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case EncodingCL100kBase:
		return 100277
	case EncodingP50kBase:
		return 50281
	default:
		return 50257
	}
}

// Name returns the encoding name.
func (t *TikToken) Name() string { return t.name }
