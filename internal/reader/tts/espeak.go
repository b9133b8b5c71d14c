// Cross-platform eSpeak implementation.
package tts

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ESpeakEngine speaks through the eSpeak/eSpeak-NG command line tool. Speak
// runs the process to completion; Stop kills it, which unblocks Speak.
type ESpeakEngine struct {
	config  Config
	cmd     *exec.Cmd
	playing bool
	paused  bool
	stopped bool
	mutex   sync.RWMutex
}

func newESpeakEngine(config Config) (*ESpeakEngine, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}

	engine := &ESpeakEngine{
		config: config,
	}

	if err := engine.testInstallation(espeakPath); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}

	return engine, nil
}

func findESpeakExecutable() (string, error) {
	candidates := []string{"espeak-ng", "espeak"}

	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

func (e *ESpeakEngine) testInstallation(espeakPath string) error {
	cmd := exec.Command(espeakPath, "--version")
	return cmd.Run()
}

func (e *ESpeakEngine) Speak(text string) error {
	e.mutex.Lock()
	if e.playing {
		e.mutex.Unlock()
		return fmt.Errorf("already playing")
	}

	espeakPath, err := findESpeakExecutable()
	if err != nil {
		e.mutex.Unlock()
		return err
	}

	args := []string{}
	if e.config.Voice != "" && e.config.Voice != "default" {
		args = append(args, "-v", e.config.Voice)
	}

	// Speed in words per minute; eSpeak default is 175.
	speed := int(175 * e.config.Speed)
	args = append(args, "-s", strconv.Itoa(speed))

	// Amplitude 0-200, default 100.
	volume := int(100 * e.config.Volume)
	args = append(args, "-a", strconv.Itoa(volume))

	args = append(args, text)

	e.cmd = exec.Command(espeakPath, args...)
	e.playing = true
	e.paused = false
	e.stopped = false
	cmd := e.cmd
	e.mutex.Unlock()

	runErr := cmd.Run()

	e.mutex.Lock()
	stopped := e.stopped
	e.playing = false
	e.paused = false
	e.stopped = false
	e.mutex.Unlock()

	if runErr != nil && !stopped {
		return fmt.Errorf("espeak: %w", runErr)
	}
	return nil
}

func (e *ESpeakEngine) Stop() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.cmd != nil && e.cmd.Process != nil && e.playing {
		e.stopped = true
		if err := e.cmd.Process.Kill(); err != nil {
			return err
		}
	}

	e.playing = false
	e.paused = false
	return nil
}

func (e *ESpeakEngine) Pause() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.playing || e.paused {
		return nil
	}

	if e.cmd != nil && e.cmd.Process != nil {
		// eSpeak has no pause command; suspend the process instead.
		if err := e.pauseProcess(); err != nil {
			return err
		}
		e.paused = true
	}

	return nil
}

func (e *ESpeakEngine) Resume() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.paused {
		return nil
	}

	if e.cmd != nil && e.cmd.Process != nil {
		if err := e.resumeProcess(); err != nil {
			return err
		}
		e.paused = false
	}

	return nil
}

func (e *ESpeakEngine) SetVoice(voice string) error {
	voices, err := e.GetAvailableVoices()
	if err != nil {
		return err
	}

	found := false
	for _, v := range voices {
		if v == voice {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("voice '%s' not available", voice)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.config.Voice = voice
	return nil
}

func (e *ESpeakEngine) SetSpeed(speed float64) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if speed <= 0 || speed > 3.0 {
		return fmt.Errorf("speed must be between 0.1 and 3.0")
	}

	e.config.Speed = speed
	return nil
}

func (e *ESpeakEngine) SetVolume(volume float64) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if volume < 0 || volume > 2.0 {
		return fmt.Errorf("volume must be between 0 and 2.0")
	}

	e.config.Volume = volume
	return nil
}

func (e *ESpeakEngine) IsPlaying() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.playing && !e.paused
}

func (e *ESpeakEngine) GetAvailableVoices() ([]string, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(espeakPath, "--voices")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	return parseESpeakVoices(string(output)), nil
}

func parseESpeakVoices(output string) []string {
	lines := strings.Split(output, "\n")
	voices := make([]string, 0)

	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// Pty Language Age/Gender VoiceName File Other Languages
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}

	return voices
}
