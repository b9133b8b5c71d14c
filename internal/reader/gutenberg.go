package reader

import (
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"booknest/internal/cli/scheme/colours"
)

const gutenbergCollectionName = "Project Gutenberg"

// LoadGutenbergCollection adds the Gutenberg catalogue to the shelf,
// using the local cache when it is fresh.
func (bn *BookNest) LoadGutenbergCollection() error {
	collection, err := bn.onlineLibrary.GetCollection()
	if err != nil {
		return err
	}

	bn.collections = append(bn.collections, *collection)
	colours.Success.Printf("✨ Loaded %d books from Project Gutenberg\n", len(collection.Books))
	return nil
}

// RefreshGutenbergCache forces a fresh catalogue fetch.
func (bn *BookNest) RefreshGutenbergCache(cmd *cobra.Command, args []string) {
	colours.Info.Println("🔄 Refreshing Gutenberg catalogue...")

	if err := bn.onlineLibrary.ClearCache(); err != nil {
		colours.Warning.Printf("⚠️ Could not clear cache: %v\n", err)
	}

	collection, err := bn.onlineLibrary.GetCollection()
	if err != nil {
		colours.Error.Printf("❌ Failed to refresh catalogue: %v\n", err)
		return
	}

	// Replace the old Gutenberg collection if one was loaded.
	replaced := false
	for i := range bn.collections {
		if bn.collections[i].Name == gutenbergCollectionName {
			bn.collections[i] = *collection
			replaced = true
			break
		}
	}
	if !replaced {
		bn.collections = append(bn.collections, *collection)
	}

	colours.Success.Printf("✅ Catalogue refreshed! %d books from Project Gutenberg\n", len(collection.Books))
}

// ShowGutenbergStatus displays information about the catalogue cache.
func (bn *BookNest) ShowGutenbergStatus(cmd *cobra.Command, args []string) {
	colours.Title.Println("📊 Gutenberg Catalogue Status")

	info, err := bn.onlineLibrary.GetCacheInfo()
	if err != nil {
		colours.Error.Printf("❌ Could not read cache info: %v\n", err)
		return
	}

	if exists, _ := info["exists"].(bool); !exists {
		colours.Warning.Println("📭 No catalogue cache found")
		colours.Info.Println("💡 Run 'booknest gutenberg refresh' to create it")
		return
	}

	if size, ok := info["size"].(int64); ok {
		colours.Info.Printf("💾 Size: %s\n", humanize.Bytes(uint64(size)))
	}
	if modified, ok := info["last_modified"].(time.Time); ok {
		colours.Info.Printf("🕐 Updated: %s\n", humanize.Time(modified))
	}
	if path, ok := info["path"].(string); ok {
		colours.Info.Printf("📁 Location: %s\n", filepath.Clean(path))
	}

	if fresh, _ := info["is_fresh"].(bool); fresh {
		colours.Success.Println("✅ Cache is fresh")
	} else {
		colours.Warning.Println("⏰ Cache is stale and will be refreshed on next load")
	}
}

// AddGutenbergCommands wires the gutenberg subcommands onto the root command.
func (bn *BookNest) AddGutenbergCommands(rootCmd *cobra.Command) {
	gutenbergCmd := &cobra.Command{
		Use:   "gutenberg",
		Short: "📚 Manage the Project Gutenberg catalogue",
		Long:  "Access and manage books from Project Gutenberg's free digital library",
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "🔄 Refresh the catalogue cache",
		Long:  "Download a fresh book catalogue from the Gutendex API",
		Run:   bn.RefreshGutenbergCache,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "📊 Show catalogue cache status",
		Long:  "Display information about the local catalogue cache",
		Run:   bn.ShowGutenbergStatus,
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "📖 Load the Gutenberg catalogue",
		Long:  "Load the book catalogue from Project Gutenberg (cached or fresh)",
		Run: func(cmd *cobra.Command, args []string) {
			if err := bn.LoadGutenbergCollection(); err != nil {
				colours.Error.Printf("❌ Failed to load Gutenberg catalogue: %v\n", err)
			}
		},
	}

	gutenbergCmd.AddCommand(refreshCmd, statusCmd, loadCmd)
	rootCmd.AddCommand(gutenbergCmd)
}
