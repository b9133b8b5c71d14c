package tts

import (
	"testing"
	"time"
)

func newTestMock() *MockEngine {
	m := NewMockEngine(Config{Speed: 1.0, Volume: 0.8})
	m.SetQuiet(true)
	m.SetWordDelay(time.Millisecond)
	return m
}

func TestMockEngineSpeakBlocks(t *testing.T) {
	m := newTestMock()
	m.SetWordDelay(10 * time.Millisecond)

	start := time.Now()
	if err := m.Speak("one two three"); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Speak returned after %v, expected it to block for playback", elapsed)
	}
	if m.IsPlaying() {
		t.Error("engine still playing after Speak returned")
	}
}

func TestMockEngineStopInterruptsSpeak(t *testing.T) {
	m := newTestMock()
	m.SetWordDelay(time.Second)

	done := make(chan error, 1)
	go func() { done <- m.Speak("this would take many seconds to finish") }()

	// Wait until playback has actually started.
	deadline := time.Now().Add(time.Second)
	for !m.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("playback never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("interrupted Speak returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Speak did not return after Stop")
	}
}

func TestMockEngineStopWhenIdle(t *testing.T) {
	m := newTestMock()
	if err := m.Stop(); err != nil {
		t.Errorf("Stop on idle engine failed: %v", err)
	}
}

func TestNewEngineMock(t *testing.T) {
	engine, err := NewEngine(Config{Type: "mock", Speed: 1.0})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, ok := engine.(*MockEngine); !ok {
		t.Errorf("expected a MockEngine, got %T", engine)
	}
}

func TestNewEngineUnknownType(t *testing.T) {
	if _, err := NewEngine(Config{Type: "gramophone"}); err == nil {
		t.Error("expected an error for an unknown engine type")
	}
}
