package narrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"booknest/internal/domain/document"
)

// Synthesizer is the speech boundary the narrator drives. Speak must not
// return until audio playback has finished, not merely once the utterance is
// queued; Stop is a best-effort halt of any in-flight utterance.
type Synthesizer interface {
	Speak(text string) error
	Stop() error
}

// Options tune chunking and pacing. Zero values fall back to the defaults.
type Options struct {
	ChunkSize    int
	TitleSettle  time.Duration // pause after speaking a chapter title
	ChunkSettle  time.Duration // pause between content chunks
	ChapterPause time.Duration // pause between chapters
	SkipSettle   time.Duration // delay before a skip restarts playback
}

const (
	defaultTitleSettle  = 800 * time.Millisecond
	defaultChunkSettle  = 400 * time.Millisecond
	defaultChapterPause = 2 * time.Second
	defaultSkipSettle   = 300 * time.Millisecond

	previewLength = 64
)

// session is the run-time context of one narration attempt: the target
// document, the current chapter, and the cancellation token of the running
// play loop. At most one session exists per narrator; Pause and Resume act
// on it, Stop discards it.
type session struct {
	id      uuid.UUID
	doc     document.Document
	chapter int

	// ctx is the cancellation token for the current play run. Resume
	// replaces it, so a loop still draining an old token can never touch
	// the session again.
	ctx    context.Context
	cancel context.CancelFunc
}

// Narrator reads a document aloud chapter by chapter through a Synthesizer.
// Every chapter is announced by its title, then its sanitized content is
// spoken in sentence-bounded chunks with small pacing delays. Cancellation
// is cooperative: the loop re-checks its token before each speak call and
// before each delay, and relies on Synthesizer.Stop to cut in-flight audio.
type Narrator struct {
	synth Synthesizer
	opts  Options
	log   *logrus.Entry

	mu     sync.Mutex
	sess   *session
	status Status
	notify func(Status)

	// gen increases whenever the active session changes. Deferred work
	// (the skip restart) captures it and becomes a no-op once superseded.
	gen uint64
}

// New creates a narrator speaking through synth.
func New(synth Synthesizer, opts Options) *Narrator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.TitleSettle <= 0 {
		opts.TitleSettle = defaultTitleSettle
	}
	if opts.ChunkSettle <= 0 {
		opts.ChunkSettle = defaultChunkSettle
	}
	if opts.ChapterPause <= 0 {
		opts.ChapterPause = defaultChapterPause
	}
	if opts.SkipSettle <= 0 {
		opts.SkipSettle = defaultSkipSettle
	}

	return &Narrator{
		synth: synth,
		opts:  opts,
		log:   logrus.WithField("component", "narrator"),
	}
}

// Notify registers a callback invoked with a status snapshot at every state
// transition and chunk boundary. Set it before the first Start.
func (n *Narrator) Notify(fn func(Status)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notify = fn
}

// Status returns the current status snapshot.
func (n *Narrator) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Start begins narrating doc from the given chapter index. It fails while a
// narration is already playing. An out-of-range index is not an error: the
// loop simply completes immediately.
func (n *Narrator) Start(doc document.Document, fromChapter int) error {
	n.mu.Lock()
	if n.status.State == StatePlaying {
		n.mu.Unlock()
		return fmt.Errorf("narration already playing")
	}

	if fromChapter < 0 {
		fromChapter = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:      uuid.New(),
		doc:     doc,
		chapter: fromChapter,
		ctx:     ctx,
		cancel:  cancel,
	}
	n.sess = s
	n.gen++
	st := Status{State: StatePlaying, Chapter: fromChapter}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	n.log.WithFields(logrus.Fields{
		"session": s.id,
		"book":    doc.Title,
		"chapter": fromChapter,
	}).Info("narration started")

	if fn != nil {
		fn(st)
	}

	go n.run(s, ctx)
	return nil
}

// Pause cancels the play loop before its next speak call, halts in-flight
// audio, and keeps the session so Resume can pick the chapter back up.
func (n *Narrator) Pause() error {
	n.mu.Lock()
	s := n.sess
	if s == nil {
		n.mu.Unlock()
		return fmt.Errorf("no active narration")
	}
	if n.status.State != StatePlaying {
		n.mu.Unlock()
		return fmt.Errorf("narration is not playing")
	}

	s.cancel()
	st := Status{State: StatePaused, Chapter: s.chapter, CurrentText: n.status.CurrentText}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	if err := n.synth.Stop(); err != nil {
		n.log.WithError(err).Warn("synthesizer stop failed on pause")
	}
	n.log.WithField("chapter", st.Chapter).Info("narration paused")

	if fn != nil {
		fn(st)
	}
	return nil
}

// Resume restarts narration of the current chapter from its title. There is
// no mid-chapter resume point: re-announcing the chapter is the intended
// behavior.
func (n *Narrator) Resume() error {
	n.mu.Lock()
	s := n.sess
	if s == nil || n.status.State != StatePaused {
		n.mu.Unlock()
		return fmt.Errorf("no paused narration to resume")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.cancel = cancel
	st := Status{State: StatePlaying, Chapter: s.chapter}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	n.log.WithField("chapter", st.Chapter).Info("narration resumed")

	if fn != nil {
		fn(st)
	}

	go n.run(s, ctx)
	return nil
}

// SkipToChapter cancels the current playback and, after a short settling
// delay, restarts narration of the same document at index. The deferred
// restart checks that no Stop or Start superseded it in the meantime.
func (n *Narrator) SkipToChapter(index int) error {
	n.mu.Lock()
	s := n.sess
	if s == nil {
		n.mu.Unlock()
		return fmt.Errorf("no active narration")
	}
	if index < 0 || index >= len(s.doc.Chapters) {
		n.mu.Unlock()
		return fmt.Errorf("chapter %d out of range (document has %d chapters)", index, len(s.doc.Chapters))
	}

	doc := s.doc
	s.cancel()
	n.sess = nil
	n.gen++
	gen := n.gen
	st := Status{State: StateIdle, Chapter: index}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	if err := n.synth.Stop(); err != nil {
		n.log.WithError(err).Warn("synthesizer stop failed on skip")
	}
	n.log.WithField("chapter", index).Info("skipping to chapter")

	if fn != nil {
		fn(st)
	}

	time.AfterFunc(n.opts.SkipSettle, func() {
		n.mu.Lock()
		superseded := n.gen != gen
		n.mu.Unlock()
		if superseded {
			return
		}
		if err := n.Start(doc, index); err != nil {
			n.log.WithError(err).Warn("skip restart rejected")
		}
	})

	return nil
}

// Stop cancels any narration, discards the session, and resets the status to
// its default. Stopping an idle narrator is a no-op.
func (n *Narrator) Stop() error {
	n.mu.Lock()
	if s := n.sess; s != nil {
		s.cancel()
		n.sess = nil
	}
	n.gen++
	st := Status{}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	err := n.synth.Stop()
	n.log.Info("narration stopped")

	if fn != nil {
		fn(st)
	}
	return err
}

// run is the chapter iteration loop. It speaks the chapter title, then the
// sanitized content in chunks, advancing until the document ends or its
// cancellation token fires. It never touches narrator state once the session
// or token has been replaced.
func (n *Narrator) run(s *session, ctx context.Context) {
	doc := s.doc

	for {
		i, ok := n.currentChapter(s, ctx)
		if !ok {
			return
		}
		if i >= len(doc.Chapters) {
			break
		}

		ch := doc.Chapters[i]

		if !n.publish(s, ctx, func(st *Status) {
			st.Chapter = i
			st.CurrentText = fmt.Sprintf("Chapter %d: %s", i+1, ch.Title)
		}) {
			return
		}

		if !n.speak(s, ctx, i, fmt.Sprintf("Chapter %d. %s", i+1, ch.Title)) {
			return
		}
		if !sleepCtx(ctx, n.opts.TitleSettle) {
			return
		}

		chunks := Chunk(Sanitize(ch.Content), n.opts.ChunkSize)
		for _, chunk := range chunks {
			if ctx.Err() != nil {
				return
			}
			if !n.publish(s, ctx, func(st *Status) {
				st.CurrentText = preview(chunk)
			}) {
				return
			}
			if !n.speak(s, ctx, i, chunk) {
				return
			}
			if !sleepCtx(ctx, n.opts.ChunkSettle) {
				return
			}
		}

		if !n.advance(s, ctx, i+1) {
			return
		}
		if i+1 < len(doc.Chapters) {
			if !sleepCtx(ctx, n.opts.ChapterPause) {
				return
			}
		}
	}

	// Natural completion: drop the session and reset to default idle.
	n.mu.Lock()
	if !n.owns(s, ctx) {
		n.mu.Unlock()
		return
	}
	n.sess = nil
	n.gen++
	st := Status{}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	n.log.WithFields(logrus.Fields{
		"session": s.id,
		"book":    doc.Title,
	}).Info("narration finished")

	if fn != nil {
		fn(st)
	}
}

// speak issues one synthesis call. It reports false when the loop must end,
// either because the session was cancelled or because synthesis failed (in
// which case the session is terminated with the error recorded).
func (n *Narrator) speak(s *session, ctx context.Context, chapter int, text string) bool {
	if ctx.Err() != nil {
		return false
	}

	if err := n.synth.Speak(text); err != nil {
		if ctx.Err() != nil {
			// Stop/Pause cut the utterance out from under the engine;
			// that is cancellation, not a failure.
			return false
		}
		n.fail(s, ctx, chapter, err)
		return false
	}
	return true
}

// fail terminates the session after a synthesis error. The chapter index is
// preserved in the status so the caller can offer to restart from it.
func (n *Narrator) fail(s *session, ctx context.Context, chapter int, err error) {
	n.mu.Lock()
	if !n.owns(s, ctx) {
		n.mu.Unlock()
		return
	}
	n.sess = nil
	n.gen++
	st := Status{State: StateIdle, Chapter: chapter, Err: err.Error()}
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	n.log.WithError(err).WithFields(logrus.Fields{
		"session": s.id,
		"chapter": chapter,
	}).Error("synthesis failed, narration halted")

	if fn != nil {
		fn(st)
	}
}

// publish applies mut to a copy of the status and installs it, provided the
// loop still owns the narrator. Reports false once the session or its token
// has been replaced.
func (n *Narrator) publish(s *session, ctx context.Context, mut func(*Status)) bool {
	n.mu.Lock()
	if !n.owns(s, ctx) {
		n.mu.Unlock()
		return false
	}
	st := n.status
	mut(&st)
	n.status = st
	fn := n.notify
	n.mu.Unlock()

	if fn != nil {
		fn(st)
	}
	return true
}

func (n *Narrator) currentChapter(s *session, ctx context.Context) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.owns(s, ctx) {
		return 0, false
	}
	return s.chapter, true
}

// advance records that chapter next-1 finished, so a later Resume starts at
// next. The in-flight chapter index only moves once its last chunk has been
// spoken.
func (n *Narrator) advance(s *session, ctx context.Context, next int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.owns(s, ctx) {
		return false
	}
	s.chapter = next
	return true
}

// owns reports whether the loop identified by (s, ctx) is still the live
// one. Callers must hold n.mu.
func (n *Narrator) owns(s *session, ctx context.Context) bool {
	return n.sess == s && s.ctx == ctx && ctx.Err() == nil
}

func preview(text string) string {
	rs := []rune(text)
	if len(rs) <= previewLength {
		return text
	}
	return string(rs[:previewLength]) + "..."
}

// sleepCtx waits for d, reporting false if ctx fires first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
