package tokenizer

// Tokenizer converts text to token ids and back. MaxInputLength is the
// largest token sequence the paired summarization engine accepts.
type Tokenizer interface {
	MaxInputLength() int
	Encode(text string) []int
	Decode(ids []int) string
}
