package markdown

import (
	"fmt"
	"strings"
)

const (
	TelegramMessageMaxLength = 4096

	continuationHeader = "📝 *Summary \\(continue\\)*\n\n"
)

// Summary is what a rendered summary message shows.
type Summary struct {
	Title       string
	URL         string
	ReviewCount int
	Text        string
}

// FormatSummary renders s as MarkdownV2 messages no longer than the Telegram
// limit. Lines are kept whole unless they do not fit an otherwise empty
// message, in which case they fill it and continue in the next one.
func FormatSummary(s Summary) []string {
	header := summaryHeader(s)

	var messages []string
	var current strings.Builder
	current.WriteString(header)
	headerLength := current.Len()

	for _, line := range strings.Split(strings.TrimSpace(s.Text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		escaped := EscapeV2(line)
		for escaped != "" {
			room := TelegramMessageMaxLength - current.Len() - 1

			if len(escaped) > room && current.Len() > headerLength {
				messages = append(messages, strings.TrimRight(current.String(), "\n"))
				current.Reset()
				current.WriteString(continuationHeader)
				headerLength = current.Len()

				continue
			}

			piece := splitEscaped(escaped, max(room, 1))[0]
			escaped = escaped[len(piece):]

			current.WriteString(piece)
			current.WriteString("\n")
		}
	}

	if current.Len() > headerLength || len(messages) == 0 {
		messages = append(messages, strings.TrimRight(current.String(), "\n"))
	}

	return messages
}

func summaryHeader(s Summary) string {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = "Reviews"
	}

	var b strings.Builder
	b.WriteString("🎮 *")
	if url := strings.TrimSpace(s.URL); url != "" {
		b.WriteString(fmt.Sprintf("[%s](%s)", EscapeV2(title), EscapeLinkURL(url)))
	} else {
		b.WriteString(EscapeV2(title))
	}
	b.WriteString("*\n")

	if s.ReviewCount > 0 {
		b.WriteString(EscapeV2(fmt.Sprintf("Based on %d reviews.", s.ReviewCount)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// splitEscaped cuts an escaped line into pieces of at most limit bytes without
// separating a backslash from the character it escapes or splitting a rune.
func splitEscaped(line string, limit int) []string {
	if len(line) <= limit {
		return []string{line}
	}

	var pieces []string
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isCutPoint(line, cut) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}

		pieces = append(pieces, line[:cut])
		line = line[cut:]
	}

	if line != "" {
		pieces = append(pieces, line)
	}

	return pieces
}

func isCutPoint(s string, i int) bool {
	if i >= len(s) {
		return true
	}

	// Continuation bytes of a multi-byte rune.
	if s[i]&0xC0 == 0x80 {
		return false
	}

	return s[i-1] != '\\'
}
