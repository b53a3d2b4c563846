package backend

import "fmt"

// ByteEOS is the end-of-sequence id of the bytes tokenizer.
const ByteEOS = 256

// Bytes is a byte-level tokenizer: ids 0-255 are the bytes of the UTF-8 text
// and 256 is the special end-of-sequence token.
type Bytes struct{}

func NewBytes() Bytes { return Bytes{} }

func (Bytes) Encode(text string) ([]int, error) {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i])
	}
	return out, nil
}

func (Bytes) Decode(id int) ([]byte, error) {
	switch {
	case id >= 0 && id < ByteEOS:
		return []byte{byte(id)}, nil
	case id == ByteEOS:
		return []byte("<eos>"), nil
	default:
		return nil, fmt.Errorf("token %d outside byte vocabulary", id)
	}
}

func (Bytes) EOS() int              { return ByteEOS }
func (Bytes) IsSpecial(id int) bool { return id == ByteEOS }
func (Bytes) VocabSize() int        { return ByteEOS + 1 }
