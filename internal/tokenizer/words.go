package tokenizer

import (
	"strings"
	"sync"
)

// Words treats every whitespace-separated field as one token. Ids are
// assigned on first sight, so Decode only knows words this instance encoded.
type Words struct {
	mu             sync.Mutex
	ids            map[string]int
	words          []string
	maxInputLength int
}

func NewWords(maxInputLength int) *Words {
	return &Words{
		ids:            make(map[string]int),
		maxInputLength: maxInputLength,
	}
}

func (w *Words) MaxInputLength() int {
	return w.maxInputLength
}

func (w *Words) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, 0, len(fields))

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, field := range fields {
		id, ok := w.ids[field]
		if !ok {
			id = len(w.words)
			w.ids[field] = id
			w.words = append(w.words, field)
		}
		ids = append(ids, id)
	}

	return ids
}

// Decode joins known words with single spaces and skips unknown ids.
func (w *Words) Decode(ids []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var b strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(w.words) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w.words[id])
	}

	return b.String()
}
