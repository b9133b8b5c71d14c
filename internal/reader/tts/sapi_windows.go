//go:build windows

package tts

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// SAPIEngine speaks through the Windows speech synthesizer via PowerShell.
// Speak runs the synthesis command to completion; Stop kills the process.
type SAPIEngine struct {
	config  Config
	cmd     *exec.Cmd
	playing bool
	paused  bool
	stopped bool
	mutex   sync.RWMutex
}

func newSAPIEngine(config Config) (*SAPIEngine, error) {
	return &SAPIEngine{
		config: config,
	}, nil
}

func (s *SAPIEngine) Speak(text string) error {
	s.mutex.Lock()
	if s.playing {
		s.mutex.Unlock()
		return fmt.Errorf("already playing")
	}

	script := fmt.Sprintf(`Add-Type -AssemblyName System.Speech;
		$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer;
		$synth.Rate = %d;
		$synth.Volume = %d;
		$synth.Speak(%s)`,
		int(s.config.Speed*10)-10, // SAPI rate range is -10 to 10
		int(s.config.Volume*100),  // SAPI volume range is 0 to 100
		powershellQuote(text))

	s.cmd = exec.Command("powershell", "-NoProfile", "-Command", script)
	s.playing = true
	s.paused = false
	s.stopped = false
	cmd := s.cmd
	s.mutex.Unlock()

	runErr := cmd.Run()

	s.mutex.Lock()
	stopped := s.stopped
	s.playing = false
	s.paused = false
	s.stopped = false
	s.mutex.Unlock()

	if runErr != nil && !stopped {
		return fmt.Errorf("sapi: %w", runErr)
	}
	return nil
}

// powershellQuote single-quotes text for embedding in a PowerShell command.
func powershellQuote(text string) string {
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}

func (s *SAPIEngine) Stop() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cmd != nil && s.cmd.Process != nil && s.playing {
		s.stopped = true
		if err := s.cmd.Process.Kill(); err != nil {
			return err
		}
	}

	s.playing = false
	s.paused = false
	return nil
}

func (s *SAPIEngine) Pause() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.playing || s.paused {
		return nil
	}

	s.paused = true
	return nil
}

func (s *SAPIEngine) Resume() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.paused {
		return nil
	}

	s.paused = false
	return nil
}

func (s *SAPIEngine) SetVoice(voice string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.config.Voice = voice
	return nil
}

func (s *SAPIEngine) SetSpeed(speed float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if speed <= 0 || speed > 3.0 {
		return fmt.Errorf("speed must be between 0.1 and 3.0")
	}

	s.config.Speed = speed
	return nil
}

func (s *SAPIEngine) SetVolume(volume float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if volume < 0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0 and 1.0")
	}

	s.config.Volume = volume
	return nil
}

func (s *SAPIEngine) IsPlaying() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playing && !s.paused
}

func (s *SAPIEngine) GetAvailableVoices() ([]string, error) {
	return []string{"Microsoft David", "Microsoft Zira", "Microsoft Mark"}, nil
}
