package tts

import (
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// MockEngine simulates speech for development and tests. Speak blocks for a
// duration proportional to the word count, or until Stop.
type MockEngine struct {
	mu      sync.Mutex
	playing bool
	paused  bool
	stop    chan struct{}

	speed   float64
	volume  float64
	voice   string
	perWord time.Duration
	quiet   bool
}

func NewMockEngine(c Config) *MockEngine {
	speed := c.Speed
	if speed <= 0 {
		speed = 1.0
	}
	return &MockEngine{
		speed:   speed,
		volume:  c.Volume,
		voice:   "default",
		perWord: 20 * time.Millisecond,
	}
}

// SetWordDelay overrides the simulated per-word speaking time. Tests use
// tiny values to keep playback fast.
func (m *MockEngine) SetWordDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perWord = d
}

// SetQuiet suppresses the simulated-speech console output.
func (m *MockEngine) SetQuiet(quiet bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quiet = quiet
}

func (m *MockEngine) Speak(text string) error {
	m.mu.Lock()
	m.playing = true
	m.paused = false
	m.stop = make(chan struct{})
	stop := m.stop
	words := len(strings.Fields(text))
	duration := time.Duration(float64(words)/m.speed) * m.perWord
	quiet := m.quiet
	m.mu.Unlock()

	if !quiet {
		color.Yellow("🔊 Reading aloud... (simulated for %v)", duration)
	}

	t := time.NewTimer(duration)
	defer t.Stop()
	select {
	case <-t.C:
	case <-stop:
	}

	m.mu.Lock()
	m.playing = false
	m.paused = false
	m.mu.Unlock()
	return nil
}

func (m *MockEngine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		select {
		case <-m.stop:
		default:
			close(m.stop)
		}
	}
	m.playing = false
	m.paused = false
	return nil
}

func (m *MockEngine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = true
	}
	return nil
}

func (m *MockEngine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		m.paused = false
	}
	return nil
}

func (m *MockEngine) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing && !m.paused
}

func (m *MockEngine) SetVoice(voice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voice = voice
	return nil
}

func (m *MockEngine) SetSpeed(speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
	return nil
}

func (m *MockEngine) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

func (m *MockEngine) GetAvailableVoices() ([]string, error) {
	return []string{"mock-voice"}, nil
}
