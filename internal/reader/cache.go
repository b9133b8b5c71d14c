package reader

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"booknest/internal/cli/scheme/colours"
	"booknest/internal/reader/tts"
)

// ShowAudioCache reports the synthesized-audio cache used by the cloud
// engines. Local engines produce no audio files, so there is nothing to show
// for them.
func (bn *BookNest) ShowAudioCache(cmd *cobra.Command, args []string) {
	colours.Title.Println("📊 Audio Cache Status")

	g, ok := bn.Tts.(*tts.GoogleEngine)
	if !ok {
		colours.Info.Println("💡 The current TTS engine does not cache audio.")
		return
	}

	files, size, err := g.CacheStats()
	if err != nil {
		colours.Error.Printf("❌ Could not read cache: %v\n", err)
		return
	}

	colours.Info.Printf("📁 Location: %s\n", viper.GetString("tts.cache_path"))
	colours.Info.Printf("🎵 Clips: %d\n", files)
	colours.Info.Printf("💾 Size: %s\n", humanize.Bytes(uint64(size)))
}

// ClearAudioCache removes all cached synthesized audio.
func (bn *BookNest) ClearAudioCache(cmd *cobra.Command, args []string) {
	g, ok := bn.Tts.(*tts.GoogleEngine)
	if !ok {
		colours.Info.Println("💡 The current TTS engine does not cache audio.")
		return
	}

	if err := g.ClearCache(); err != nil {
		colours.Error.Printf("❌ Could not clear cache: %v\n", err)
		return
	}
	colours.Success.Println("✅ Audio cache cleared")
}

// AddCacheCommands wires the audio cache subcommands onto the root command.
func (bn *BookNest) AddCacheCommands(rootCmd *cobra.Command) {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "🗄️ Manage the synthesized-audio cache",
		Long:  "Inspect or clear audio cached by the cloud TTS engines",
		Run:   bn.ShowAudioCache,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "🧹 Clear cached audio",
		Long:  "Remove every cached audio clip",
		Run:   bn.ClearAudioCache,
	}

	cacheCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(cacheCmd)
}
