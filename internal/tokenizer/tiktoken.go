package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// Tiktoken is a BPE tokenizer backed by tiktoken-go.
type Tiktoken struct {
	tke            *tiktoken.Tiktoken
	maxInputLength int
}

// NewTiktoken loads the named encoding. Loading may download the rank file
// on first use unless TIKTOKEN_CACHE_DIR already holds it.
func NewTiktoken(encoding string, maxInputLength int) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding (name = %s): %w", encoding, err)
	}

	return &Tiktoken{tke: tke, maxInputLength: maxInputLength}, nil
}

func (t *Tiktoken) MaxInputLength() int {
	return t.maxInputLength
}

func (t *Tiktoken) Encode(text string) []int {
	return t.tke.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(ids []int) string {
	return t.tke.Decode(ids)
}
