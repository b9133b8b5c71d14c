package tts

// Config selects and tunes a TTS engine.
type Config struct {
	Type   string
	Speed  float64
	Volume float64
	Voice  string
}

// Engine is the speech synthesis boundary. Speak blocks until the utterance
// has finished playing (or Stop cuts it off); it never returns on enqueue.
// The narrator's pacing depends on that contract.
type Engine interface {
	Speak(text string) error
	Stop() error
	Pause() error
	Resume() error
	IsPlaying() bool
	SetVoice(voice string) error
	SetSpeed(speed float64) error
	SetVolume(volume float64) error
	GetAvailableVoices() ([]string, error)
}
