package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine synthesizes speech with the OpenAI audio API and plays the
// MP3 result locally. Requires OPENAI_API_KEY.
type OpenAIEngine struct {
	client *openai.Client
	player mp3Player

	mu     sync.Mutex
	voice  string
	speed  float64
	volume float64
}

func newOpenAIEngine(config Config) (*OpenAIEngine, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	voice := config.Voice
	if voice == "" || voice == "default" {
		voice = string(openai.VoiceNova)
	}

	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}

	return &OpenAIEngine{
		client: openai.NewClient(key),
		voice:  voice,
		speed:  speed,
		volume: config.Volume,
	}, nil
}

func (o *OpenAIEngine) Speak(text string) error {
	o.mu.Lock()
	voice := o.voice
	speed := o.speed
	o.mu.Unlock()

	resp, err := o.client.CreateSpeech(context.Background(), openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return fmt.Errorf("openai synthesis failed: %w", err)
	}
	defer resp.Close()

	// Buffer the whole clip; the player needs a seekable-enough stream and
	// clips are a few hundred KB at most for narrator-sized chunks.
	audio, err := io.ReadAll(resp)
	if err != nil {
		return fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	return o.player.play(io.NopCloser(bytes.NewReader(audio)))
}

func (o *OpenAIEngine) Stop() error {
	o.player.halt()
	return nil
}

func (o *OpenAIEngine) Pause() error {
	o.player.setPaused(true)
	return nil
}

func (o *OpenAIEngine) Resume() error {
	o.player.setPaused(false)
	return nil
}

func (o *OpenAIEngine) IsPlaying() bool {
	return o.player.isPlaying()
}

func (o *OpenAIEngine) SetVoice(voice string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.voice = voice
	return nil
}

func (o *OpenAIEngine) SetSpeed(speed float64) error {
	if speed < 0.25 || speed > 4.0 {
		return fmt.Errorf("speed must be between 0.25 and 4.0")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.speed = speed
	return nil
}

func (o *OpenAIEngine) SetVolume(volume float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = volume
	return nil
}

func (o *OpenAIEngine) GetAvailableVoices() ([]string, error) {
	return []string{
		string(openai.VoiceAlloy),
		string(openai.VoiceEcho),
		string(openai.VoiceFable),
		string(openai.VoiceOnyx),
		string(openai.VoiceNova),
		string(openai.VoiceShimmer),
	}, nil
}
