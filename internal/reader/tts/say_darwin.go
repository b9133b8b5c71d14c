//go:build darwin

package tts

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// AVFoundationEngine speaks through the macOS `say` command. Speak runs the
// process to completion; Stop kills it.
type AVFoundationEngine struct {
	config  Config
	cmd     *exec.Cmd
	playing bool
	paused  bool
	stopped bool
	mutex   sync.RWMutex
}

func newAVFoundationEngine(config Config) (*AVFoundationEngine, error) {
	return &AVFoundationEngine{
		config: config,
	}, nil
}

func (av *AVFoundationEngine) Speak(text string) error {
	av.mutex.Lock()
	if av.playing {
		av.mutex.Unlock()
		return fmt.Errorf("already playing")
	}

	args := []string{}
	if av.config.Voice != "" && av.config.Voice != "default" {
		args = append(args, "-v", av.config.Voice)
	}

	// Rate in words per minute; `say` defaults to ~175.
	rate := fmt.Sprintf("%.0f", 175*av.config.Speed)
	args = append(args, "-r", rate)
	args = append(args, text)

	av.cmd = exec.Command("say", args...)
	av.playing = true
	av.paused = false
	av.stopped = false
	cmd := av.cmd
	av.mutex.Unlock()

	runErr := cmd.Run()

	av.mutex.Lock()
	stopped := av.stopped
	av.playing = false
	av.paused = false
	av.stopped = false
	av.mutex.Unlock()

	if runErr != nil && !stopped {
		return fmt.Errorf("say: %w", runErr)
	}
	return nil
}

func (av *AVFoundationEngine) Stop() error {
	av.mutex.Lock()
	defer av.mutex.Unlock()

	if av.cmd != nil && av.cmd.Process != nil && av.playing {
		av.stopped = true
		if err := av.cmd.Process.Kill(); err != nil {
			return err
		}
	}

	av.playing = false
	av.paused = false
	return nil
}

func (av *AVFoundationEngine) Pause() error {
	av.mutex.Lock()
	defer av.mutex.Unlock()

	if !av.playing || av.paused {
		return nil
	}

	av.paused = true
	return nil
}

func (av *AVFoundationEngine) Resume() error {
	av.mutex.Lock()
	defer av.mutex.Unlock()

	if !av.paused {
		return nil
	}

	av.paused = false
	return nil
}

func (av *AVFoundationEngine) SetVoice(voice string) error {
	av.mutex.Lock()
	defer av.mutex.Unlock()
	av.config.Voice = voice
	return nil
}

func (av *AVFoundationEngine) SetSpeed(speed float64) error {
	av.mutex.Lock()
	defer av.mutex.Unlock()

	if speed <= 0 || speed > 3.0 {
		return fmt.Errorf("speed must be between 0.1 and 3.0")
	}

	av.config.Speed = speed
	return nil
}

func (av *AVFoundationEngine) SetVolume(volume float64) error {
	av.mutex.Lock()
	defer av.mutex.Unlock()

	if volume < 0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0 and 1.0")
	}

	av.config.Volume = volume
	return nil
}

func (av *AVFoundationEngine) IsPlaying() bool {
	av.mutex.RLock()
	defer av.mutex.RUnlock()
	return av.playing && !av.paused
}

func (av *AVFoundationEngine) GetAvailableVoices() ([]string, error) {
	cmd := exec.Command("say", "-v", "?")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	// Output lines look like: "VoiceName    en_US    # description"
	var voices []string
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			voices = append(voices, fields[0])
		}
	}
	return voices, nil
}
