package reader

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"booknest/internal/cli/scheme/colours"
	"booknest/internal/domain/document"
	"booknest/internal/domain/library"
	"booknest/internal/domain/library/generator"
	"booknest/internal/reader/narrator"
	"booknest/internal/reader/tts"
)

// BookNest is the main application structure: a shelf of books, a TTS
// engine, and the narrator that reads a chosen book through it.
type BookNest struct {
	onlineLibrary *generator.GutenbergCache

	collections []library.Collection
	Tts         tts.Engine
	Narrator    *narrator.Narrator
	ctx         context.Context
	Cancel      context.CancelFunc
}

func NewBookNest() *BookNest {
	engine, err := tts.NewEngine(tts.Config{
		Type:   viper.GetString("tts.type"),
		Speed:  viper.GetFloat64("tts.speed"),
		Volume: viper.GetFloat64("tts.volume"),
		Voice:  viper.GetString("tts.voice"),
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create tts engine")
	}

	n := narrator.New(engine, narrator.Options{
		ChunkSize:    viper.GetInt("narrator.chunk_size"),
		TitleSettle:  viper.GetDuration("narrator.title_settle"),
		ChunkSettle:  viper.GetDuration("narrator.chunk_settle"),
		ChapterPause: viper.GetDuration("narrator.chapter_pause"),
		SkipSettle:   viper.GetDuration("narrator.skip_settle"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &BookNest{
		onlineLibrary: generator.NewGutenbergCache(getCacheDirectory(), viper.GetDuration("library.cache_max_age")),
		Tts:           engine,
		Narrator:      n,
		ctx:           ctx,
		Cancel:        cancel,
	}
}

// Shutdown stops narration and any in-flight audio.
func (bn *BookNest) Shutdown() {
	bn.Cancel()
	if err := bn.Narrator.Stop(); err != nil {
		logrus.WithError(err).Warn("narrator stop failed during shutdown")
	}
}

func (bn *BookNest) ShowWelcome() {
	fmt.Println()
	colours.Title.Println("🌟 Welcome to BookNest! 🌟")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • booknest list      - Browse the bookshelf")
	fmt.Println("  • booknest random    - Listen to a surprise book")
	fmt.Println("  • booknest read      - Read a specific book aloud")
	fmt.Println("  • booknest chapters  - Show a book's chapters")
	fmt.Println("  • booknest voices    - List available voices")
	fmt.Println("  • booknest settings  - Configure voice settings")
	fmt.Println()
	colours.Prompt.Println("✨ Ready to be read to? ✨")
}

// LoadSampleShelf seeds the shelf with built-in demo books so the app works
// before any online catalogue has been fetched.
func (bn *BookNest) LoadSampleShelf() {
	sampleShelf := library.Collection{
		Name: "Starter Shelf",
		URL:  "builtin://samples",
		Books: []document.Document{
			{
				ID:          "voyage-north",
				Title:       "The Voyage North",
				Author:      "E. Harrow",
				Description: "A short seafaring adventure in three chapters",
				Chapters: []document.Chapter{
					{
						Title: "Setting Sail",
						Content: "The harbour was quiet when the *Meridian* slipped her moorings. " +
							"Nobody waved from the pier. Tomas checked the charts one last time and " +
							"whispered, \"North it is.\"\n\n" +
							"By noon the coast had thinned to a pencil line behind them.",
					},
					{
						Title: "The Storm",
						Content: "## Night watch\n\nThe glass fell fast. **Waves** the size of chapels " +
							"came out of the dark, and the crew lashed everything that could move. " +
							"Tomas counted the seconds between lightning and thunder. Three. Then two. Then one.",
					},
					{
						Title: "Landfall",
						Content: "Morning came pale and sudden. Ahead lay the island from the old " +
							"[charts](https://example.com/charts), exactly where no island should be.",
					},
				},
			},
			{
				ID:          "clockmaker",
				Title:       "The Clockmaker's Apprentice",
				Author:      "M. Voss",
				Description: "A gentle tale about patience and gears",
				Chapters: []document.Chapter{
					{
						Title: "The Shop on Miller Lane",
						Content: "Every clock in the shop told a different time, and old Behrens " +
							"insisted each one of them was right. Lena swept the floor and listened " +
							"to the arguments of the pendulums.",
					},
					{
						Title: "Winding Day",
						Content: "- Wind the tall case clock first.\n- Never touch the silver carriage clock.\n" +
							"- Leave the cuckoo for last.\n\nLena knew the rules by heart. " +
							"She broke the second one on a Tuesday.",
					},
				},
			},
		},
	}

	bn.collections = append(bn.collections, sampleShelf)
}

// LoadShelfWithGutenberg loads the sample shelf and then tries to add the
// online Gutenberg catalogue.
func (bn *BookNest) LoadShelfWithGutenberg() {
	bn.LoadSampleShelf()

	colours.Info.Println("🌐 Loading Project Gutenberg catalogue...")
	if err := bn.LoadGutenbergCollection(); err != nil {
		colours.Warning.Printf("⚠️ Could not load Gutenberg catalogue: %v\n", err)
		colours.Info.Println("💡 You can load it later with: booknest gutenberg load")
	}
}

func (bn *BookNest) ListBooks(cmd *cobra.Command, args []string) {
	author, _ := cmd.Flags().GetString("author")

	fmt.Println()
	colours.Title.Println("📚 The Bookshelf 📚")
	fmt.Println()

	count := 0
	for _, coll := range bn.collections {
		colours.Info.Printf("📖 From %s:\n", coll.Name)

		for _, book := range coll.Books {
			if author != "" && !strings.Contains(strings.ToLower(book.Author), strings.ToLower(author)) {
				continue
			}

			count++
			fmt.Printf("  %d. ", count)
			colours.Title.Printf("%s", book.Title)
			fmt.Printf(" by ")
			colours.Author.Printf("%s\n", book.Author)
			if book.ChapterCount() > 0 {
				fmt.Printf("     📑 %d chapters | ⏱️ ~%d minutes\n", book.ChapterCount(), listeningMinutes(book))
			}
			if book.Description != "" {
				fmt.Printf("     💡 %s\n", book.Description)
			}
			colours.Info.Printf("     ID: %s\n", book.ID)
			fmt.Println()
		}
	}

	if count == 0 {
		colours.Warning.Println("🔍 No books found matching your criteria.")
	} else {
		colours.Success.Printf("✨ Found %d books! ✨\n", count)
	}
}

// listeningMinutes estimates listening time at ~150 spoken words per minute.
func listeningMinutes(doc document.Document) int {
	minutes := doc.Words() / 150
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func (bn *BookNest) ReadRandomBook(cmd *cobra.Command, args []string) {
	books := bn.getAllBooks()
	if len(books) == 0 {
		colours.Error.Println("❌ No books available!")
		return
	}

	randomBook := books[rand.Intn(len(books))]

	fmt.Println()
	colours.Prompt.Println("🎲 Random Book Selection! 🎲")
	fmt.Println()

	bn.displayAndNarrate(randomBook, 0)
}

func (bn *BookNest) ReadBook(cmd *cobra.Command, args []string) {
	interactive, _ := cmd.Flags().GetBool("interactive")
	fromChapter, _ := cmd.Flags().GetInt("chapter")

	if len(args) == 0 || interactive {
		bn.interactiveBookSelection()
		return
	}

	bookID := args[0]
	book, err := bn.resolveBook(bookID)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	if fromChapter < 1 || fromChapter > book.ChapterCount() {
		fromChapter = 1
	}
	bn.displayAndNarrate(*book, fromChapter-1)
}

func (bn *BookNest) ShowChapters(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		colours.Error.Println("❌ Usage: booknest chapters <book-id>")
		return
	}

	book, err := bn.resolveBook(args[0])
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	fmt.Println()
	colours.Title.Printf("📖 %s\n", book.Title)
	colours.Author.Printf("✍️  by %s\n", book.Author)
	fmt.Println()

	for i, ch := range book.Chapters {
		colours.Chapter.Printf("  %2d. %s", i+1, ch.Title)
		fmt.Printf("  (%d words)\n", len(strings.Fields(ch.Content)))
	}
	fmt.Println()
	colours.Success.Printf("✨ %d chapters\n", book.ChapterCount())
}

func (bn *BookNest) interactiveBookSelection() {
	books := bn.getAllBooks()
	if len(books) == 0 {
		colours.Error.Println("❌ No books available!")
		return
	}

	fmt.Println()
	colours.Title.Println("📚 Choose Your Book! 📚")
	fmt.Println()

	for i, book := range books {
		fmt.Printf("%d. ", i+1)
		colours.Title.Printf("%s", book.Title)
		fmt.Printf(" by ")
		colours.Author.Printf("%s\n", book.Author)
	}

	fmt.Println()
	colours.Prompt.Print("🌟 Enter the number of your chosen book (or 'q' to quit): ")

	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "q" || input == "quit" {
		colours.Warning.Println("👋 Maybe next time! 🌙")
		return
	}

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > len(books) {
		colours.Error.Println("❌ Invalid selection! Please try again.")
		return
	}

	selected := books[choice-1]
	if hydrated, err := bn.resolveBook(selected.ID); err == nil {
		selected = *hydrated
	}
	bn.displayAndNarrate(selected, 0)
}

// displayAndNarrate shows the book header and runs the narration control
// loop until the book completes or the listener stops it.
func (bn *BookNest) displayAndNarrate(book document.Document, fromChapter int) {
	fmt.Println()
	colours.Title.Printf("📖 %s\n", book.Title)
	colours.Author.Printf("✍️  by %s\n", book.Author)
	fmt.Printf("📑 %d chapters | ⏱️ ~%d minutes\n", book.ChapterCount(), listeningMinutes(book))
	if book.Description != "" {
		fmt.Printf("💡 %s\n", book.Description)
	}
	fmt.Println()

	if book.ChapterCount() == 0 {
		colours.Error.Println("❌ This book has no chapters to read.")
		return
	}

	if g, ok := bn.Tts.(*tts.GoogleEngine); ok {
		g.SetCacheScope(book.ID)
	}

	colours.Success.Println("🎵 Starting narration... 🎵")
	fmt.Println("💡 Controls: [p]ause, [r]esume, [s N] skip to chapter N, [q]uit")
	fmt.Println()

	bn.Narrator.Notify(statusPrinter())

	if err := bn.Narrator.Start(book, fromChapter); err != nil {
		colours.Error.Printf("❌ Could not start narration: %v\n", err)
		return
	}

	bn.controlLoop()
}

// statusPrinter returns a notify callback that prints chapter transitions
// and terminal states without repeating itself.
func statusPrinter() func(narrator.Status) {
	lastChapter := -1
	lastState := narrator.StateIdle

	return func(st narrator.Status) {
		switch {
		case st.Err != "":
			colours.Error.Printf("\n❌ Narration failed at chapter %d: %s\n", st.Chapter+1, st.Err)
			colours.Info.Printf("💡 Resume with: read --chapter %d\n", st.Chapter+1)
		case st.State == narrator.StatePlaying && st.Chapter != lastChapter:
			colours.Chapter.Printf("\n🎧 Chapter %d\n", st.Chapter+1)
		case st.State == narrator.StatePaused && lastState != narrator.StatePaused:
			colours.Warning.Println("⏸️  Paused")
		case st.State == narrator.StateIdle && lastState == narrator.StatePlaying:
			colours.Success.Println("\n✅ The end! 🌟")
		}
		lastChapter = st.Chapter
		lastState = st.State
	}
}

// controlLoop reads single-letter commands until narration ends or the
// listener quits.
func (bn *BookNest) controlLoop() {
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-bn.ctx.Done():
			return
		default:
		}

		fmt.Print("\n⏯️  [p]ause / [r]esume / [s N] skip / [q]uit: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		input = strings.TrimSpace(strings.ToLower(input))

		switch {
		case input == "p" || input == "pause":
			if err := bn.Narrator.Pause(); err != nil {
				colours.Info.Printf("ℹ️  %v\n", err)
			}
		case input == "r" || input == "resume":
			if err := bn.Narrator.Resume(); err != nil {
				colours.Info.Printf("ℹ️  %v\n", err)
			}
		case strings.HasPrefix(input, "s"):
			arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(input, "skip"), "s"))
			chapter, err := strconv.Atoi(arg)
			if err != nil {
				colours.Info.Println("ℹ️  Usage: s <chapter number>")
				continue
			}
			if err := bn.Narrator.SkipToChapter(chapter - 1); err != nil {
				colours.Info.Printf("ℹ️  %v\n", err)
			}
		case input == "q" || input == "quit" || input == "stop":
			if err := bn.Narrator.Stop(); err != nil {
				logrus.WithError(err).Warn("stop failed")
			}
			colours.Warning.Println("⏹️  Stopped")
			return
		case input == "":
			if bn.Narrator.Status().State == narrator.StateIdle {
				return
			}
		default:
			colours.Info.Println("ℹ️  Use 'p', 'r', 's N' or 'q'")
		}
	}
}

func (bn *BookNest) ListVoices(cmd *cobra.Command, args []string) {
	voices, err := bn.Tts.GetAvailableVoices()
	if err != nil {
		colours.Error.Printf("❌ Could not list voices: %v\n", err)
		return
	}

	fmt.Println()
	colours.Title.Println("🎤 Available Voices 🎤")
	fmt.Println()
	for _, v := range voices {
		fmt.Printf("  • %s\n", v)
	}
	fmt.Println()
	colours.Success.Printf("✨ %d voices\n", len(voices))
}

func (bn *BookNest) ConfigureSettings(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("⚙️ TTS Settings ⚙️")
	fmt.Println()

	colours.Prompt.Println("🎤 Current settings:")
	fmt.Printf("  • Engine: %s\n", viper.GetString("tts.type"))
	fmt.Printf("  • Voice: %s\n", viper.GetString("tts.voice"))
	fmt.Printf("  • Speed: %.1fx\n", viper.GetFloat64("tts.speed"))
	fmt.Printf("  • Volume: %.0f%%\n", viper.GetFloat64("tts.volume")*100)
	fmt.Println()
	colours.Info.Println("💡 Edit $HOME/.booknest/booknest.yaml to change them.")
}

// getAllBooks flattens the shelf.
func (bn *BookNest) getAllBooks() []document.Document {
	var all []document.Document
	for _, coll := range bn.collections {
		all = append(all, coll.Books...)
	}
	return all
}

// resolveBook finds a book by ID and hydrates its chapters if it is a
// catalogue entry whose text has not been downloaded yet.
func (bn *BookNest) resolveBook(id string) (*document.Document, error) {
	for _, coll := range bn.collections {
		for i := range coll.Books {
			book := coll.Books[i]
			if book.ID != id {
				continue
			}
			if book.ChapterCount() > 0 {
				return &book, nil
			}
			return bn.loadOnlineBook(id)
		}
	}
	return nil, fmt.Errorf("book with ID '%s' not found", id)
}

func (bn *BookNest) loadOnlineBook(id string) (*document.Document, error) {
	resource, err := bn.onlineLibrary.FindResource(id)
	if err != nil {
		return nil, err
	}

	colours.Info.Printf("🌐 Downloading %s...\n", resource.Name)
	loadCtx, cancel := context.WithTimeout(bn.ctx, 2*time.Minute)
	defer cancel()

	return bn.onlineLibrary.LoadResource(loadCtx, resource)
}

// getCacheDirectory returns the catalogue cache directory.
func getCacheDirectory() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "booknest")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".booknest", "cache")
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, "cache")
	}
	return "cache"
}
