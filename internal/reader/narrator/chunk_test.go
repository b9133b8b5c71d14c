package narrator

import (
	"strings"
	"testing"
)

func TestChunkRespectsSentenceBoundaries(t *testing.T) {
	text := "One two. Three four. Five six."

	got := Chunk(text, 20)
	want := []string{"One two. Three four.", "Five six."}

	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestChunkEverythingFitsInOne(t *testing.T) {
	text := "Short one. Short two. Short three."

	got := Chunk(text, DefaultChunkSize)
	if len(got) != 1 {
		t.Fatalf("expected a single chunk, got %v", got)
	}
	if got[0] != text {
		t.Errorf("expected %q, got %q", text, got[0])
	}
}

func TestChunkOversizedSentenceKeptWhole(t *testing.T) {
	text := "This single sentence is far longer than the configured limit allows."

	got := Chunk(text, 10)
	if len(got) != 1 {
		t.Fatalf("expected one oversized chunk, got %v", got)
	}
	if got[0] != text {
		t.Errorf("oversized sentence must not be split, got %q", got[0])
	}
}

func TestChunkCoversAllWords(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon! Zeta eta theta? Iota kappa."

	got := Chunk(text, 25)
	joined := strings.Join(got, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, strings.Trim(word, ".!?")) {
			t.Errorf("word %q missing from chunks %v", word, got)
		}
	}
}

func TestChunkKeepsPunctuationRunsAttached(t *testing.T) {
	got := Chunk("Really?! Yes indeed.", DefaultChunkSize)
	if len(got) != 1 {
		t.Fatalf("expected one chunk, got %v", got)
	}
	if got[0] != "Really?! Yes indeed." {
		t.Errorf("punctuation run mangled: %q", got[0])
	}
}

func TestChunkDoesNotSplitOnDecimals(t *testing.T) {
	got := Chunk("Pi is 3.14 exactly. Trust me.", 20)
	if len(got) != 2 {
		t.Fatalf("expected two chunks, got %v", got)
	}
	if got[0] != "Pi is 3.14 exactly." {
		t.Errorf("decimal split mid-number: %q", got[0])
	}
}

func TestChunkDropsNoise(t *testing.T) {
	if got := Chunk("", DefaultChunkSize); len(got) != 0 {
		t.Errorf("expected no chunks for empty input, got %v", got)
	}
	if got := Chunk("a.", DefaultChunkSize); len(got) != 0 {
		t.Errorf("expected leftover punctuation noise to be dropped, got %v", got)
	}
	if got := Chunk("Hi.", DefaultChunkSize); len(got) != 1 {
		t.Errorf("expected a real short sentence to survive, got %v", got)
	}
}

func TestChunkZeroMaxUsesDefault(t *testing.T) {
	text := "First sentence. Second sentence."
	got := Chunk(text, 0)
	if len(got) != 1 || got[0] != text {
		t.Errorf("expected default-sized single chunk, got %v", got)
	}
}
