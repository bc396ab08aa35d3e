package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"- Great game.", "\\- Great game\\."},
		{"a_b*c[d](e)", "a\\_b\\*c\\[d\\]\\(e\\)"},
		{`back\slash`, `back\\slash`},
	}

	for _, test := range tests {
		if got := EscapeV2(test.input); got != test.want {
			t.Fatalf("EscapeV2(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestFormatSummarySingleMessage(t *testing.T) {
	messages := FormatSummary(Summary{
		Title:       "Dummy Game",
		URL:         "https://store.example/app/1/",
		ReviewCount: 50,
		Text:        "- Fun.\n- Short.",
	})

	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}

	want := "🎮 *[Dummy Game](https://store.example/app/1/)*\n" +
		"Based on 50 reviews\\.\n\n" +
		"\\- Fun\\.\n\\- Short\\."
	if messages[0] != want {
		t.Fatalf("unexpected message:\n%q\nwant\n%q", messages[0], want)
	}
}

func TestFormatSummaryWithoutURLOrCount(t *testing.T) {
	messages := FormatSummary(Summary{Title: "Game not found."})

	if len(messages) != 1 || messages[0] != "🎮 *Game not found\\.*" {
		t.Fatalf("unexpected messages: %q", messages)
	}
}

func TestFormatSummarySplitsLongText(t *testing.T) {
	line := "- " + strings.Repeat("word ", 100)
	text := strings.TrimSpace(strings.Repeat(line+"\n", 30))

	messages := FormatSummary(Summary{Title: "Game", Text: text})
	if len(messages) < 2 {
		t.Fatalf("expected several messages, got %d", len(messages))
	}

	for i, message := range messages {
		if len(message) > TelegramMessageMaxLength {
			t.Fatalf("message %d exceeds limit: %d bytes", i, len(message))
		}
		if i > 0 && !strings.HasPrefix(message, continuationHeader) {
			t.Fatalf("message %d lacks continuation header", i)
		}
	}
}

func TestSplitEscapedKeepsEscapesAndRunes(t *testing.T) {
	line := EscapeV2(strings.Repeat("é.", 50))

	pieces := splitEscaped(line, 7)
	if strings.Join(pieces, "") != line {
		t.Fatalf("pieces do not rebuild the line")
	}

	for i, piece := range pieces {
		if len(piece) > 7 {
			t.Fatalf("piece %d too long: %d", i, len(piece))
		}
		if !utf8.ValidString(piece) {
			t.Fatalf("piece %d splits a rune: %q", i, piece)
		}
		if strings.HasSuffix(piece, `\`) {
			t.Fatalf("piece %d ends with a dangling escape: %q", i, piece)
		}
	}
}

func TestFormatSummaryNeverSendsBareHeader(t *testing.T) {
	s := Summary{Title: strings.Repeat("T", 300), Text: strings.Repeat("x", 4000)}
	header := summaryHeader(s)

	messages := FormatSummary(s)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	if !strings.HasPrefix(messages[0], header) || len(messages[0]) <= len(header) {
		t.Fatalf("first message carries no summary text: %q", messages[0])
	}

	total := 0
	for i, message := range messages {
		if len(message) > TelegramMessageMaxLength {
			t.Fatalf("message %d exceeds limit: %d bytes", i, len(message))
		}

		total += strings.Count(message, "x")
	}

	if total != 4000 {
		t.Fatalf("expected all 4000 characters across messages, got %d", total)
	}
}
