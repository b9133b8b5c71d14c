package document

import "strings"

// Chapter is a titled unit of book content and the unit of narration
// progress. Content may carry markdown markup; the narrator sanitizes it
// before it is spoken.
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Document is an ordered sequence of chapters. The narrator only ever reads
// it; nothing in booknest mutates a document after it has been built.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Chapters    []Chapter `json:"chapters"`
}

func (d Document) ChapterCount() int {
	return len(d.Chapters)
}

// Words counts the words across all chapters, used for rough listening-time
// estimates in listings.
func (d Document) Words() int {
	total := 0
	for _, ch := range d.Chapters {
		total += len(strings.Fields(ch.Content))
	}
	return total
}
