//go:build windows

package tts

import "fmt"

// pauseProcess stops the eSpeak process on Windows. There is no
// SIGSTOP/SIGCONT equivalent, so pause terminates the utterance.
func (e *ESpeakEngine) pauseProcess() error {
	if e.cmd.Process != nil {
		e.stopped = true
		return e.cmd.Process.Kill()
	}
	return fmt.Errorf("no process to pause")
}

// resumeProcess cannot restart a killed process on Windows.
func (e *ESpeakEngine) resumeProcess() error {
	return fmt.Errorf("resume not supported on Windows - process was terminated")
}
