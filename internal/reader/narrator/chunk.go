package narrator

import (
	"strings"
	"unicode"
)

// DefaultChunkSize is the target upper bound for a single synthesis call.
const DefaultChunkSize = 500

// Chunk splits sanitized text into speech-sized segments on sentence
// boundaries. Sentences are accumulated greedily up to maxLen; a single
// sentence longer than maxLen is emitted as its own oversized chunk rather
// than split mid-sentence. Chunks of 2 or fewer characters after trimming
// are discarded as sanitization noise.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	sentences := splitSentences(text)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		switch {
		case current == "":
			current = sentence
		case len(current)+1+len(sentence) > maxLen:
			chunks = append(chunks, current)
			current = sentence
		default:
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	kept := chunks[:0]
	for _, c := range chunks {
		if len(strings.TrimSpace(c)) > 2 {
			kept = append(kept, c)
		}
	}
	return kept
}

// splitSentences breaks text on '.', '!' or '?' runs followed by whitespace
// or end of input. The punctuation stays attached to the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	rs := []rune(text)

	start := 0
	i := 0
	for i < len(rs) {
		r := rs[i]
		if r != '.' && r != '!' && r != '?' {
			i++
			continue
		}

		end := i + 1
		for end < len(rs) && (rs[end] == '.' || rs[end] == '!' || rs[end] == '?') {
			end++
		}

		if end < len(rs) && !unicode.IsSpace(rs[end]) {
			// Mid-token punctuation (decimals, abbreviations); keep scanning.
			i = end
			continue
		}

		if s := strings.TrimSpace(string(rs[start:end])); s != "" {
			out = append(out, s)
		}
		for end < len(rs) && unicode.IsSpace(rs[end]) {
			end++
		}
		start = end
		i = end
	}

	if start < len(rs) {
		if s := strings.TrimSpace(string(rs[start:])); s != "" {
			out = append(out, s)
		}
	}

	return out
}
