package tts

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// googleMaxChars stays under the API's 5000-character synthesis limit.
const googleMaxChars = 4800

// GoogleEngine synthesizes speech with Google Cloud Text-to-Speech and plays
// the MP3 result locally. Synthesized audio is cached on disk keyed by
// content and voice, so re-reading a chapter never re-bills the API.
type GoogleEngine struct {
	client *texttospeech.Client
	ctx    context.Context
	player mp3Player

	mu           sync.Mutex
	voice        string
	speed        float64
	volume       float64
	cacheRootDir string
	cacheScope   string
}

func newGoogleEngine(config Config, cacheDir string) (*GoogleEngine, error) {
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	voice := config.Voice
	if voice == "" || voice == "default" {
		voice = "en-GB-Chirp3-HD-Umbriel"
	}

	return &GoogleEngine{
		client:       client,
		ctx:          ctx,
		voice:        voice,
		speed:        config.Speed,
		volume:       config.Volume,
		cacheRootDir: cacheDir,
	}, nil
}

// SetCacheScope groups cached audio under a book identifier so per-book
// cache entries can be inspected and cleared together. Call it before Speak.
func (g *GoogleEngine) SetCacheScope(bookID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cacheScope = bookID
}

func (g *GoogleEngine) cacheDir() string {
	if g.cacheScope == "" {
		return filepath.Join(g.cacheRootDir, "google")
	}
	return filepath.Join(g.cacheRootDir, "google", g.cacheScope)
}

func (g *GoogleEngine) Speak(text string) error {
	g.mu.Lock()
	dir := g.cacheDir()
	voice := g.voice
	speed := g.speed
	volume := g.volume
	g.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	for i, part := range splitForSynthesis(text, googleMaxChars) {
		path, err := g.synthesizeToCache(dir, voice, speed, volume, part, i)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open cached MP3 %s: %w", path, err)
		}
		if err := g.player.play(f); err != nil {
			return fmt.Errorf("failed to play %s: %w", path, err)
		}
		if g.player.halted() {
			return nil
		}
	}
	return nil
}

// synthesizeToCache returns the cache path for one synthesis part, calling
// the API only on a cache miss.
func (g *GoogleEngine) synthesizeToCache(dir, voice string, speed, volume float64, text string, part int) (string, error) {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(text+voice)))[:12]
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.mp3", hash, part))

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices reject speakingRate/pitch; plain voices take both.
	if !strings.Contains(strings.ToLower(voice), "chirp") {
		audioCfg.SpeakingRate = speed
		audioCfg.VolumeGainDb = volume
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCodeFromVoice(voice),
			Name:         voice,
		},
		AudioConfig: audioCfg,
	}

	resp, err := g.client.SynthesizeSpeech(g.ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize: %w", err)
	}

	if err := os.WriteFile(path, resp.AudioContent, 0644); err != nil {
		return "", fmt.Errorf("failed to write MP3 to %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"voice": voice,
		"file":  path,
	}).Debug("cached synthesized audio")
	return path, nil
}

// languageCodeFromVoice derives "en-US" from voice names like
// "en-US-Chirp3-HD-Charon".
func languageCodeFromVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// splitForSynthesis cuts oversized text at rune boundaries. The narrator's
// chunks are far below the limit; this only guards pathological input.
func splitForSynthesis(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var parts []string
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}

func (g *GoogleEngine) Stop() error {
	g.player.halt()
	return nil
}

func (g *GoogleEngine) Pause() error {
	g.player.setPaused(true)
	return nil
}

func (g *GoogleEngine) Resume() error {
	g.player.setPaused(false)
	return nil
}

func (g *GoogleEngine) IsPlaying() bool {
	return g.player.isPlaying()
}

func (g *GoogleEngine) SetVoice(voice string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voice = voice
	return nil
}

func (g *GoogleEngine) SetSpeed(speed float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.speed = speed
	return nil
}

func (g *GoogleEngine) SetVolume(volume float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.volume = volume
	return nil
}

func (g *GoogleEngine) GetAvailableVoices() ([]string, error) {
	resp, err := g.client.ListVoices(g.ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	voices := []string{}
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

// CacheStats walks the audio cache and reports file count and total size.
func (g *GoogleEngine) CacheStats() (int64, int64, error) {
	var files, size int64

	err := filepath.Walk(filepath.Join(g.cacheRootDir, "google"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
			files++
			size += info.Size()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return files, size, err
	}
	return files, size, nil
}

// ClearCache removes all cached audio.
func (g *GoogleEngine) ClearCache() error {
	return os.RemoveAll(filepath.Join(g.cacheRootDir, "google"))
}
