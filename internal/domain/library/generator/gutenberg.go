package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"booknest/internal/domain/document"
	"booknest/internal/domain/library"
)

const gutendexBase = "https://gutendex.com/books/"

// GutenbergCache fetches the Project Gutenberg catalogue through the
// Gutendex API and keeps a local JSON cache so repeated listings don't hit
// the network. Book text is downloaded on demand by LoadResource.
type GutenbergCache struct {
	cacheDir   string
	cacheFile  string
	maxAge     time.Duration
	httpClient *http.Client
}

// gutendexResponse is one page of the Gutendex book listing.
type gutendexResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []gutendexBook `json:"results"`
}

type gutendexBook struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []gutendexAuthor  `json:"authors"`
	Summaries     []string          `json:"summaries"`
	Subjects      []string          `json:"subjects"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

type gutendexAuthor struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// cachedCatalogue is the on-disk cache layout.
type cachedCatalogue struct {
	Resources   []*OnlineResource `json:"resources"`
	LastUpdated time.Time         `json:"last_updated"`
	TotalBooks  int               `json:"total_books"`
}

// NewGutenbergCache creates a catalogue cache rooted at cacheDir. Entries
// older than maxAge are refreshed from the API on the next listing.
func NewGutenbergCache(cacheDir string, maxAge time.Duration) *GutenbergCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logrus.WithError(err).Warn("Failed to create cache directory")
	}

	return &GutenbergCache{
		cacheDir:  cacheDir,
		cacheFile: filepath.Join(cacheDir, "gutenberg_catalogue.json"),
		maxAge:    maxAge,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListOnlineResources returns the catalogue, from cache when fresh and from
// the API otherwise. A stale cache is still served if the API is down.
func (gc *GutenbergCache) ListOnlineResources() ([]*OnlineResource, error) {
	if gc.isCacheFresh() {
		logrus.Info("Loading Gutenberg catalogue from cache")
		return gc.loadFromCache()
	}

	logrus.Info("Fetching fresh Gutenberg catalogue from API")
	resources, err := gc.fetchFromAPI()
	if err != nil {
		logrus.WithError(err).Warn("API fetch failed, trying stale cache")
		if cached, cacheErr := gc.loadFromCache(); cacheErr == nil {
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch catalogue and no cache available: %w", err)
	}

	if err := gc.saveToCache(resources); err != nil {
		logrus.WithError(err).Warn("Failed to save catalogue cache")
	}

	return resources, nil
}

// GetCollection materializes the catalogue as a library collection with
// metadata-only documents. Chapters are filled in by LoadResource when a
// book is actually opened for narration.
func (gc *GutenbergCache) GetCollection() (*library.Collection, error) {
	resources, err := gc.ListOnlineResources()
	if err != nil {
		return nil, err
	}

	coll := &library.Collection{
		Name: "Project Gutenberg",
		URL:  gutendexBase,
	}
	for _, r := range resources {
		coll.Books = append(coll.Books, document.Document{
			ID:          r.ID,
			Title:       r.Name,
			Author:      r.Metadata["author"],
			Description: r.Description,
		})
	}
	return coll, nil
}

// LoadResource downloads the book text and splits it into chapters.
func (gc *GutenbergCache) LoadResource(ctx context.Context, r *OnlineResource) (*document.Document, error) {
	if r == nil {
		return nil, fmt.Errorf("nil gutenberg resource")
	}
	if !strings.HasPrefix(r.URL, "http") {
		return nil, fmt.Errorf("invalid content url: %s", r.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := gc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, r.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read book text: %w", err)
	}

	chapters := document.SplitChapters(r.Name, string(body))
	logrus.WithFields(logrus.Fields{
		"book":     r.Name,
		"chapters": len(chapters),
	}).Info("Loaded Gutenberg book")

	return &document.Document{
		ID:          r.ID,
		Title:       r.Name,
		Author:      r.Metadata["author"],
		Description: r.Description,
		Chapters:    chapters,
	}, nil
}

// FindResource looks up a catalogue entry by ID.
func (gc *GutenbergCache) FindResource(id string) (*OnlineResource, error) {
	resources, err := gc.ListOnlineResources()
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("book %q not in Gutenberg catalogue", id)
}

func (gc *GutenbergCache) isCacheFresh() bool {
	info, err := os.Stat(gc.cacheFile)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < gc.maxAge
}

func (gc *GutenbergCache) loadFromCache() ([]*OnlineResource, error) {
	file, err := os.Open(gc.cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var cached cachedCatalogue
	if err := json.NewDecoder(file).Decode(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"books":        len(cached.Resources),
		"last_updated": cached.LastUpdated.Format(time.RFC3339),
	}).Info("Loaded Gutenberg catalogue from cache")

	return cached.Resources, nil
}

func (gc *GutenbergCache) saveToCache(resources []*OnlineResource) error {
	cached := cachedCatalogue{
		Resources:   resources,
		LastUpdated: time.Now(),
		TotalBooks:  len(resources),
	}

	file, err := os.Create(gc.cacheFile)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cached); err != nil {
		return fmt.Errorf("failed to encode cache data: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"books": len(resources),
		"file":  gc.cacheFile,
	}).Info("Saved Gutenberg catalogue to cache")

	return nil
}

// fetchFromAPI pulls a few catalogue pages of popular books and deduplicates
// them into resources.
func (gc *GutenbergCache) fetchFromAPI() ([]*OnlineResource, error) {
	queries := []string{
		"?sort=popular",
		"?topic=fiction",
		"?topic=adventure",
		"?search=short%20stories",
	}

	var resources []*OnlineResource
	seen := make(map[int]bool)

	for _, query := range queries {
		url := gutendexBase + query + "&languages=en"
		page, err := gc.fetchPage(url)
		if err != nil {
			logrus.WithError(err).WithField("url", url).Warn("Failed to fetch catalogue page")
			continue
		}

		for _, book := range page.Results {
			if seen[book.ID] {
				continue
			}
			r := gc.toResource(book)
			if r == nil {
				continue
			}
			resources = append(resources, r)
			seen[book.ID] = true
		}

		// Be gentle with the public API between pages.
		time.Sleep(500 * time.Millisecond)
	}

	logrus.WithField("count", len(resources)).Info("Fetched Gutenberg catalogue from API")
	return resources, nil
}

func (gc *GutenbergCache) fetchPage(url string) (*gutendexResponse, error) {
	resp, err := gc.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d for URL %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var page gutendexResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &page, nil
}

// toResource converts an API book into a catalogue resource, or nil when the
// book has no plain-text download.
func (gc *GutenbergCache) toResource(book gutendexBook) *OnlineResource {
	contentURL := bestTextFormat(book.Formats)
	if contentURL == "" {
		return nil
	}

	author := "Unknown"
	if len(book.Authors) > 0 {
		author = book.Authors[0].Name
	}

	description := "A classic from Project Gutenberg's free digital library."
	if len(book.Summaries) > 0 {
		description = book.Summaries[0]
	} else if len(book.Subjects) > 0 {
		description = fmt.Sprintf("A classic from Project Gutenberg. %s", book.Subjects[0])
	}

	return &OnlineResource{
		ID:          fmt.Sprintf("gutenberg-%d", book.ID),
		Name:        cleanTitle(book.Title),
		Description: description,
		URL:         contentURL,
		Metadata: map[string]string{
			"author":    author,
			"subjects":  strings.Join(book.Subjects, ","),
			"downloads": fmt.Sprintf("%d", book.DownloadCount),
		},
	}
}

// bestTextFormat picks the most narratable download format.
func bestTextFormat(formats map[string]string) string {
	preferred := []string{
		"text/plain; charset=utf-8",
		"text/plain; charset=us-ascii",
		"text/plain",
	}

	for _, format := range preferred {
		if url, exists := formats[format]; exists {
			return url
		}
	}

	return ""
}

func cleanTitle(title string) string {
	clean := strings.TrimSpace(title)
	clean = strings.Replace(clean, "(English)", "", 1)
	// Gutendex titles often carry a subtitle after a line break.
	if idx := strings.IndexAny(clean, "\r\n"); idx > 0 {
		clean = clean[:idx]
	}
	return strings.TrimSpace(clean)
}

// ClearCache removes the catalogue cache file.
func (gc *GutenbergCache) ClearCache() error {
	if err := os.Remove(gc.cacheFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logrus.Info("Cleared Gutenberg catalogue cache")
	return nil
}

// GetCacheInfo reports cache file details for the status command.
func (gc *GutenbergCache) GetCacheInfo() (map[string]interface{}, error) {
	info := make(map[string]interface{})
	info["path"] = gc.cacheFile

	if stat, err := os.Stat(gc.cacheFile); err == nil {
		info["exists"] = true
		info["size"] = stat.Size()
		info["last_modified"] = stat.ModTime()
		info["is_fresh"] = gc.isCacheFresh()
		info["max_age_hours"] = gc.maxAge.Hours()
	} else {
		info["exists"] = false
	}

	return info, nil
}
