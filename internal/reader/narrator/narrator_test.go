package narrator

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"booknest/internal/domain/document"
)

// fakeSynth scripts the Synthesizer boundary. With the gate enabled every
// Speak blocks until the test releases it, which makes pause/skip timing
// deterministic.
type fakeSynth struct {
	mu     sync.Mutex
	calls  []string
	stops  int
	failOn int // 1-based call index that returns an error, 0 for never
	gate   bool

	began   chan string
	release chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{
		began:   make(chan string, 32),
		release: make(chan struct{}, 32),
	}
}

func (f *fakeSynth) Speak(text string) error {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	call := len(f.calls)
	failOn := f.failOn
	gated := f.gate
	f.mu.Unlock()

	select {
	case f.began <- text:
	default:
	}
	if gated {
		<-f.release
	}
	if failOn != 0 && call == failOn {
		return errors.New("synthesis backend unavailable")
	}
	return nil
}

func (f *fakeSynth) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSynth) call(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeSynth) setGate(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = on
}

func fastOptions() Options {
	return Options{
		TitleSettle:  time.Millisecond,
		ChunkSettle:  time.Millisecond,
		ChapterPause: time.Millisecond,
		SkipSettle:   5 * time.Millisecond,
	}
}

func watch(n *Narrator) <-chan Status {
	ch := make(chan Status, 64)
	n.Notify(func(st Status) { ch <- st })
	return ch
}

func waitFor(t *testing.T, ch <-chan Status, what string, pred func(Status) bool) Status {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func twoChapterBook() document.Document {
	return document.Document{
		ID:    "test-book",
		Title: "Test Book",
		Chapters: []document.Chapter{
			{Title: "Beginnings", Content: "First sentence here. Second sentence here."},
			{Title: "Endings", Content: ""},
		},
	}
}

func TestNarratorReadsDocumentToCompletion(t *testing.T) {
	synth := newFakeSynth()
	n := New(synth, fastOptions())
	statuses := watch(n)

	if err := n.Start(twoChapterBook(), 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, statuses, "playback start", func(st Status) bool {
		return st.State == StatePlaying
	})
	final := waitFor(t, statuses, "natural completion", func(st Status) bool {
		return st.State == StateIdle
	})

	if final != (Status{}) {
		t.Errorf("expected default idle status after completion, got %+v", final)
	}

	// Both chapter titles are announced even though chapter 2 is empty.
	want := []string{
		"Chapter 1. Beginnings",
		"First sentence here. Second sentence here.",
		"Chapter 2. Endings",
	}
	if synth.callCount() != len(want) {
		t.Fatalf("expected %d speak calls, got %d: %v", len(want), synth.callCount(), synth.calls)
	}
	for i, w := range want {
		if got := synth.call(i); got != w {
			t.Errorf("call %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestNarratorStartFromChapter(t *testing.T) {
	synth := newFakeSynth()
	n := New(synth, fastOptions())
	statuses := watch(n)

	if err := n.Start(twoChapterBook(), 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, statuses, "completion", func(st Status) bool { return st.State == StateIdle })

	if synth.callCount() != 1 {
		t.Fatalf("expected only chapter 2 to be spoken, got calls %v", synth.calls)
	}
	if got := synth.call(0); got != "Chapter 2. Endings" {
		t.Errorf("expected chapter 2 title, got %q", got)
	}
}

func TestNarratorStartPastEndCompletesImmediately(t *testing.T) {
	synth := newFakeSynth()
	n := New(synth, fastOptions())
	statuses := watch(n)

	if err := n.Start(twoChapterBook(), 99); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, statuses, "completion", func(st Status) bool { return st.State == StateIdle })

	if synth.callCount() != 0 {
		t.Errorf("expected no speak calls, got %v", synth.calls)
	}
}

func TestNarratorRejectsStartWhilePlaying(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())

	if err := n.Start(twoChapterBook(), 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began

	if err := n.Start(twoChapterBook(), 0); err == nil {
		t.Error("expected second Start to fail while playing")
	}

	if err := n.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	synth.release <- struct{}{}
}

func TestNarratorPauseAndResume(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())
	statuses := watch(n)

	book := document.Document{
		Title: "Short",
		Chapters: []document.Chapter{
			{Title: "Only", Content: "Hello there. All done now."},
		},
	}

	if err := n.Start(book, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began // title utterance in flight

	if err := n.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	st := n.Status()
	if st.State != StatePaused || st.Chapter != 0 {
		t.Errorf("expected paused at chapter 0, got %+v", st)
	}

	// Release the in-flight utterance; the cancelled loop must not issue
	// another speak call.
	synth.release <- struct{}{}
	time.Sleep(20 * time.Millisecond)
	if synth.callCount() != 1 {
		t.Fatalf("expected no speak calls after pause, got %v", synth.calls)
	}

	// Resume restarts the chapter from its title.
	if err := n.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if got := <-synth.began; got != "Chapter 1. Only" {
		t.Errorf("expected resume to re-announce the chapter, got %q", got)
	}

	synth.setGate(false)
	synth.release <- struct{}{}

	final := waitFor(t, statuses, "completion", func(st Status) bool {
		return st.State == StateIdle && st.Err == ""
	})
	if final != (Status{}) {
		t.Errorf("expected default idle status, got %+v", final)
	}
	if got := synth.call(synth.callCount() - 1); got != "Hello there. All done now." {
		t.Errorf("expected content chunk last, got %q", got)
	}
}

func TestNarratorPauseWithoutSessionFails(t *testing.T) {
	n := New(newFakeSynth(), fastOptions())

	if err := n.Pause(); err == nil {
		t.Error("expected Pause to fail with no active narration")
	}
	if err := n.Resume(); err == nil {
		t.Error("expected Resume to fail with nothing paused")
	}
	if err := n.SkipToChapter(0); err == nil {
		t.Error("expected SkipToChapter to fail with no active narration")
	}
}

func TestNarratorSkipToChapter(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())
	statuses := watch(n)

	book := document.Document{
		Title: "Trilogy",
		Chapters: []document.Chapter{
			{Title: "One", Content: "Alpha text here."},
			{Title: "Two", Content: "Beta text here."},
			{Title: "Three", Content: "Gamma text here."},
		},
	}

	if err := n.Start(book, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began

	if err := n.SkipToChapter(2); err != nil {
		t.Fatalf("SkipToChapter failed: %v", err)
	}
	st := n.Status()
	if st.State != StateIdle || st.Chapter != 2 {
		t.Errorf("expected idle at chapter 2 during settle, got %+v", st)
	}

	synth.release <- struct{}{}

	if got := <-synth.began; got != "Chapter 3. Three" {
		t.Errorf("expected restart at chapter 3, got %q", got)
	}

	synth.setGate(false)
	synth.release <- struct{}{}

	waitFor(t, statuses, "completion", func(st Status) bool {
		return st.State == StateIdle && st.Chapter == 0 && st.Err == ""
	})

	for i := 0; i < synth.callCount(); i++ {
		if strings.HasPrefix(synth.call(i), "Chapter 2.") {
			t.Errorf("chapter 2 should have been skipped, calls: %v", synth.calls)
		}
	}
}

func TestNarratorSkipOutOfRange(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())

	if err := n.Start(twoChapterBook(), 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began

	if err := n.SkipToChapter(5); err == nil {
		t.Error("expected out-of-range skip to fail")
	}
	if err := n.SkipToChapter(-1); err == nil {
		t.Error("expected negative skip to fail")
	}
	if st := n.Status(); st.State != StatePlaying {
		t.Errorf("failed skip must not disturb playback, got %+v", st)
	}

	n.Stop()
	synth.release <- struct{}{}
}

func TestNarratorStopSupersedesSkipRestart(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	opts := fastOptions()
	opts.SkipSettle = 50 * time.Millisecond
	n := New(synth, opts)

	if err := n.Start(twoChapterBook(), 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began

	if err := n.SkipToChapter(1); err != nil {
		t.Fatalf("SkipToChapter failed: %v", err)
	}
	if err := n.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	synth.release <- struct{}{}
	before := synth.callCount()
	time.Sleep(100 * time.Millisecond) // past the settle delay

	if synth.callCount() != before {
		t.Errorf("skip restart ran despite Stop, calls: %v", synth.calls)
	}
	if st := n.Status(); st != (Status{}) {
		t.Errorf("expected default idle status after Stop, got %+v", st)
	}
}

func TestNarratorStopResetsStatus(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())

	if err := n.Start(twoChapterBook(), 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began

	if err := n.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	synth.release <- struct{}{}

	if st := n.Status(); st != (Status{}) {
		t.Errorf("expected status reset to defaults, got %+v", st)
	}

	// Stopping again is a no-op.
	if err := n.Stop(); err != nil {
		t.Errorf("idle Stop failed: %v", err)
	}
}

func TestNarratorSynthesisFailureHaltsSession(t *testing.T) {
	synth := newFakeSynth()
	synth.failOn = 2 // first content chunk
	n := New(synth, fastOptions())
	statuses := watch(n)

	book := document.Document{
		Title: "Fragile",
		Chapters: []document.Chapter{
			{Title: "Doomed", Content: "This chunk will fail. More text that never plays."},
			{Title: "Unreached", Content: "Never spoken."},
		},
	}

	if err := n.Start(book, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	final := waitFor(t, statuses, "failure status", func(st Status) bool {
		return st.Err != ""
	})
	if final.State != StateIdle {
		t.Errorf("expected idle after failure, got %v", final.State)
	}
	if final.Chapter != 0 {
		t.Errorf("failure must preserve the chapter index, got %d", final.Chapter)
	}

	time.Sleep(20 * time.Millisecond)
	if synth.callCount() != 2 {
		t.Errorf("expected no speak calls after failure, got %v", synth.calls)
	}

	// The narrator is reusable after a failure.
	if err := n.Start(book, 1); err != nil {
		t.Fatalf("Start after failure rejected: %v", err)
	}
	waitFor(t, statuses, "recovery completion", func(st Status) bool {
		return st.State == StateIdle && st.Err == ""
	})
}

func TestNarratorStatusPreviewTruncates(t *testing.T) {
	synth := newFakeSynth()
	synth.setGate(true)
	n := New(synth, fastOptions())

	long := strings.Repeat("Lorem ipsum dolor sit amet. ", 10)
	book := document.Document{
		Title:    "Wordy",
		Chapters: []document.Chapter{{Title: "Dense", Content: long}},
	}

	if err := n.Start(book, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-synth.began // title
	synth.release <- struct{}{}
	<-synth.began // first content chunk in flight

	st := n.Status()
	if len([]rune(st.CurrentText)) > previewLength+3 {
		t.Errorf("preview too long (%d runes): %q", len([]rune(st.CurrentText)), st.CurrentText)
	}
	if !strings.HasSuffix(st.CurrentText, "...") {
		t.Errorf("expected truncated preview, got %q", st.CurrentText)
	}

	synth.release <- struct{}{}
	n.Stop()
	synth.setGate(false)
}
