package telegram

import (
	"strings"
	"unicode/utf8"
)

const fence = "```"

// SplitMessage cuts text into chunks of at most maxLen runes, preferring
// a newline in the second half of each chunk as the cut point.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > maxLen {
		cut := maxLen
		if nl := lastNewline(runes[:maxLen]); nl > maxLen/2 {
			cut = nl + 1
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// FixMarkdown closes an unterminated code fence and unterminated inline
// code spans so Telegram accepts the message.
func FixMarkdown(text string) string {
	if strings.Count(text, fence)%2 != 0 {
		text += "\n" + fence
	}

	var b strings.Builder
	b.Grow(len(text) + 1)
	inFence, inline := false, false
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], fence) {
			if inline {
				b.WriteByte('`')
				inline = false
			}
			inFence = !inFence
			b.WriteString(fence)
			i += len(fence)
			continue
		}
		if !inFence && text[i] == '`' {
			inline = !inline
		}
		b.WriteByte(text[i])
		i++
	}
	if inline {
		b.WriteByte('`')
	}
	return b.String()
}
