package types

// Model describes a servable model discovered by the registry. Descriptors are
// read from YAML, JSON or TOML files in the models directory.
type Model struct {
	// Stable identifier for the model.
	// example: tiny-bigram
	ID string `json:"id" yaml:"id" toml:"id" example:"tiny-bigram"`
	// Human-friendly name.
	// example: Tiny bigram (bytes)
	Name string `json:"name" yaml:"name" toml:"name" example:"Tiny bigram (bytes)"`
	// Absolute path to the descriptor file on disk.
	Path string `json:"path" yaml:"-" toml:"-"`
	// Model capability variant: dummy | bigram.
	// example: bigram
	Backend string `json:"backend" yaml:"backend" toml:"backend" example:"bigram"`
	// Tokenizer capability variant: bytes | tiktoken.
	// example: bytes
	Tokenizer string `json:"tokenizer" yaml:"tokenizer" toml:"tokenizer" example:"bytes"`
	// Encoding name for the tiktoken tokenizer (cl100k_base, p50k_base, r50k_base).
	Encoding string `json:"encoding,omitempty" yaml:"encoding" toml:"encoding"`
	// Training corpus for the bigram backend, relative to the descriptor.
	Corpus string `json:"corpus,omitempty" yaml:"corpus" toml:"corpus"`
	// Vocabulary size override for the dummy backend.
	VocabSize int `json:"vocab_size,omitempty" yaml:"vocab_size" toml:"vocab_size"`
	// Additive smoothing for the bigram backend.
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha" toml:"alpha"`
}

// FinishReason reports why a sequence stopped.
type FinishReason string

const (
	FinishLength       FinishReason = "length"
	FinishEosToken     FinishReason = "eos_token"
	FinishStopSequence FinishReason = "stop_sequence"
)
