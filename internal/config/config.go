package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults registers every tunable with its default value. Call before
// constructing the app.
func SetDefaults() {
	viper.SetDefault("tts.type", "auto") // Auto-select best engine
	viper.SetDefault("tts.voice", "default")
	viper.SetDefault("tts.speed", 1.0)
	viper.SetDefault("tts.volume", 0.8)
	viper.SetDefault("tts.cache_path", defaultCachePath())

	viper.SetDefault("narrator.chunk_size", 500)
	viper.SetDefault("narrator.title_settle", "800ms")
	viper.SetDefault("narrator.chunk_settle", "400ms")
	viper.SetDefault("narrator.chapter_pause", "2s")
	viper.SetDefault("narrator.skip_settle", "300ms")

	viper.SetDefault("library.cache_max_age", "24h")
}

func defaultCachePath() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "booknest", "audio")
	}
	return filepath.Join("cache", "audio")
}
