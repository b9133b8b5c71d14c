package tts

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"
)

type EngineType string

const (
	EngineTypeMock         EngineType = "mock"
	EngineTypeESpeak       EngineType = "espeak"
	EngineTypeSAPI         EngineType = "sapi"         // Windows only
	EngineTypeAVFoundation EngineType = "avfoundation" // macOS only
	EngineTypeGoogle       EngineType = "google"
	EngineTypeOpenAI       EngineType = "openai"
	EngineTypeAuto         EngineType = "auto" // Automatically choose best for platform
)

func (e EngineType) String() string {
	return string(e)
}

// NewEngine creates a TTS engine based on the provided config.
func NewEngine(config Config) (Engine, error) {
	if config.Type == EngineTypeAuto.String() {
		config.Type = bestEngineForPlatform().String()
	}

	switch config.Type {
	case EngineTypeMock.String():
		return NewMockEngine(config), nil

	case EngineTypeGoogle.String():
		cachePath := viper.GetString("tts.cache_path")
		return newGoogleEngine(config, cachePath)

	case EngineTypeOpenAI.String():
		return newOpenAIEngine(config)

	case EngineTypeESpeak.String():
		return newESpeakEngine(config)

	case EngineTypeSAPI.String():
		if runtime.GOOS != "windows" {
			return nil, fmt.Errorf("SAPI engine only supports Windows")
		}
		return newSAPIEngine(config)

	case EngineTypeAVFoundation.String():
		if runtime.GOOS != "darwin" {
			return nil, fmt.Errorf("AVFoundation engine only supports macOS")
		}
		return newAVFoundationEngine(config)

	default:
		return nil, fmt.Errorf("unsupported TTS engine type: %s", config.Type)
	}
}

// bestEngineForPlatform returns the recommended engine for the current
// environment. Cloud engines win when credentials are present.
func bestEngineForPlatform() EngineType {
	if hasGoogleCredentials() {
		return EngineTypeGoogle
	}
	if hasOpenAIKey() {
		return EngineTypeOpenAI
	}

	switch runtime.GOOS {
	case "windows":
		return EngineTypeSAPI
	case "darwin":
		return EngineTypeAVFoundation
	default:
		return EngineTypeESpeak
	}
}

// GetAvailableEngines returns engines usable on the current platform.
func GetAvailableEngines() []EngineType {
	engines := []EngineType{EngineTypeMock, EngineTypeESpeak}

	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogle)
	}
	if hasOpenAIKey() {
		engines = append(engines, EngineTypeOpenAI)
	}

	switch runtime.GOOS {
	case "windows":
		engines = append(engines, EngineTypeSAPI)
	case "darwin":
		engines = append(engines, EngineTypeAVFoundation)
	}

	return engines
}

func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}

func hasOpenAIKey() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}
