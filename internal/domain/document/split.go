package document

import (
	"regexp"
	"strings"
)

var (
	headingLine = regexp.MustCompile(`^#{1,2}\s+(.+?)\s*$`)
	chapterLine = regexp.MustCompile(`(?i)^\s*(?:chapter|part|book)\s+(?:[0-9]+|[ivxlc]+|[a-z]+)\.?\s*.{0,60}$`)
)

// SplitChapters breaks a flat book text into chapters. Markdown books split
// on level-1/2 headings; plain texts (Project Gutenberg downloads) split on
// "CHAPTER N" style lines. A text with no recognizable boundaries becomes a
// single chapter carrying the fallback title.
func SplitChapters(fallbackTitle, text string) []Chapter {
	lines := strings.Split(text, "\n")

	if chapters := splitOn(lines, markdownBoundary); len(chapters) > 1 {
		return chapters
	}
	if chapters := splitOn(lines, plainBoundary); len(chapters) > 1 {
		return chapters
	}

	return []Chapter{{Title: fallbackTitle, Content: strings.TrimSpace(text)}}
}

// markdownBoundary reports a heading line and returns its title text.
func markdownBoundary(line string) (string, bool) {
	if m := headingLine.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

// plainBoundary reports a "CHAPTER N" style line. The line itself is the
// chapter title.
func plainBoundary(line string) (string, bool) {
	if chapterLine.MatchString(line) {
		return strings.TrimSpace(line), true
	}
	return "", false
}

func splitOn(lines []string, boundary func(string) (string, bool)) []Chapter {
	var chapters []Chapter
	var current *Chapter
	var buf []string

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(buf, "\n"))
		chapters = append(chapters, *current)
		current = nil
		buf = nil
	}

	var preamble []string
	for _, line := range lines {
		if title, ok := boundary(line); ok {
			flush()
			current = &Chapter{Title: title}
			continue
		}
		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		buf = append(buf, line)
	}
	flush()

	// Text before the first boundary becomes a preface chapter so nothing
	// is silently dropped from narration.
	if pre := strings.TrimSpace(strings.Join(preamble, "\n")); pre != "" && len(chapters) > 0 {
		chapters = append([]Chapter{{Title: "Preface", Content: pre}}, chapters...)
	}

	return chapters
}
