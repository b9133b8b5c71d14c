package narrator

import (
	"regexp"
	"strings"
)

// The sanitizer runs ordered passes over the whole text. Order matters:
// wrapping markers are unwrapped before the final stray-symbol strip, and
// images are removed before links so "![alt](url)" never degrades into a
// bare "!alt".
var (
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicStarRe = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUndRe  = regexp.MustCompile(`_([^_\n]+)_`)
	fencedRe     = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]*)`")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	hruleRe      = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	listRe       = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
	quoteRe      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	strayRe      = regexp.MustCompile("[*_~`]")
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// Sanitize strips markdown markup from chapter text so a speech engine never
// vocalizes syntax. It accepts any input and is idempotent for ordinary
// prose.
func Sanitize(raw string) string {
	s := headingRe.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, "#", "")

	s = boldRe.ReplaceAllString(s, "$1")
	s = italicStarRe.ReplaceAllString(s, "$1")
	s = italicUndRe.ReplaceAllString(s, "$1")

	s = fencedRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")

	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")

	s = hruleRe.ReplaceAllString(s, "")
	s = listRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")

	s = strayRe.ReplaceAllString(s, "")

	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = spaceRunRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
