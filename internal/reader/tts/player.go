package tts

import (
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// mp3Player plays MP3 streams through the system speaker for the cloud
// engines. play blocks until the stream finishes or halt cuts it off.
type mp3Player struct {
	mu      sync.Mutex
	ctrl    *beep.Ctrl
	stop    chan struct{}
	playing bool
}

func (p *mp3Player) play(rc io.ReadCloser) error {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}

	done := make(chan struct{})

	p.mu.Lock()
	p.ctrl = &beep.Ctrl{Streamer: streamer}
	p.stop = make(chan struct{})
	p.playing = true
	ctrl := p.ctrl
	stop := p.stop
	p.mu.Unlock()

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-stop:
		speaker.Clear()
	}

	p.mu.Lock()
	p.ctrl = nil
	p.playing = false
	p.mu.Unlock()
	return nil
}

// halt unblocks a play call and drops the speaker queue.
func (p *mp3Player) halt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		select {
		case <-p.stop:
		default:
			close(p.stop)
		}
	}
	p.playing = false
}

// halted reports whether the current utterance was cut off.
func (p *mp3Player) halted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return false
	}
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *mp3Player) setPaused(paused bool) {
	p.mu.Lock()
	ctrl := p.ctrl
	p.mu.Unlock()
	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = paused
	speaker.Unlock()
}

func (p *mp3Player) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
