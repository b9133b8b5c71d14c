package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"booknest/internal/cli/scheme/colours"
	"booknest/internal/config"
	"booknest/internal/reader"
)

func main() {

	config.SetDefaults()

	app := reader.NewBookNest()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Shutdown()
		app.Tts.Stop()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! Happy listening! 🎧"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "booknest",
		Short: "🏠 A cozy nest of books read aloud",
		Long: `
┌─────────────────────────────────────┐
│  📚 Welcome to BookNest! 🏠        │
│  A cozy nest of books, read aloud   │
│  chapter by chapter 🎧✨           │
└─────────────────────────────────────┘

BookNest turns books into listening sessions: pick a book, and it is
narrated to you chapter by chapter. Pause, resume, or skip ahead at
any time. 🌙
		`,
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowWelcome()
		},
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "📋 List available books",
		Long:  "Display all books on the shelf, built-in and downloaded",
		Run:   app.ListBooks,
	}

	// Random command
	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "🎲 Listen to a random book",
		Long:  "Select a random book from the shelf and start narrating it",
		Run:   app.ReadRandomBook,
	}

	// Read command
	readCmd := &cobra.Command{
		Use:   "read [book-id]",
		Short: "📖 Read a book aloud",
		Long:  "Narrate a book by its ID, optionally starting from a given chapter",
		Run:   app.ReadBook,
	}

	// Chapters command
	chaptersCmd := &cobra.Command{
		Use:   "chapters [book-id]",
		Short: "📑 Show a book's chapters",
		Long:  "List the chapters of a book with their word counts",
		Run:   app.ShowChapters,
	}

	// Voices command
	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List available voices",
		Long:  "Show the voices the configured TTS engine offers",
		Run:   app.ListVoices,
	}

	// Settings command
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show TTS settings",
		Long:  "Display the current voice, speed, and volume settings",
		Run:   app.ConfigureSettings,
	}

	// Add flags
	listCmd.Flags().StringP("author", "a", "", "Filter by author name")
	readCmd.Flags().IntP("chapter", "c", 0, "Chapter to start narration from (1-based)")
	readCmd.Flags().BoolP("interactive", "i", false, "Interactive book selection")

	rootCmd.AddCommand(listCmd, randomCmd, readCmd, chaptersCmd, voicesCmd, settingsCmd)

	// Add Gutenberg and audio cache commands
	app.AddGutenbergCommands(rootCmd)
	app.AddCacheCommands(rootCmd)

	// Load the shelf including the Gutenberg catalogue
	app.LoadShelfWithGutenberg()

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

// Configuration management with Viper
func init() {
	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded environment from .env")
	}

	viper.SetConfigName("booknest")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.booknest")
	viper.AddConfigPath(".")

	viper.ReadInConfig()
}
