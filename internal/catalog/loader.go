package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ideaforge/idea-engine/internal/models"
)

// Loader manages loading and caching of the project-idea catalog
type Loader struct {
	mu    sync.RWMutex
	ideas []*models.ProjectIdea
	byID  map[string]*models.ProjectIdea
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		byID: make(map[string]*models.ProjectIdea),
	}
}

// LoadFromDir loads all YAML idea files from a directory.
// Files are processed in name order so the catalog order is stable.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading idea catalog from directory", "dir", dir)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		n, err := l.LoadFromFile(file)
		if err != nil {
			slog.Warn("failed to load idea file", "file", file, "error", err)
			continue
		}
		loaded += n
	}

	slog.Info("idea catalog loaded", "ideas", loaded, "files", len(files))
	return nil
}

// LoadFromFile loads ideas from a single YAML file and appends them to
// the catalog. Entries with a duplicate or missing id are skipped.
func (l *Loader) LoadFromFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	var f ideaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	loaded := 0
	for i := range f.Ideas {
		idea := f.Ideas[i]

		if idea.ID == "" {
			slog.Warn("idea missing id, skipping", "file", path, "title", idea.Title)
			continue
		}
		if idea.Title == "" {
			slog.Warn("idea missing title, skipping", "file", path, "id", idea.ID)
			continue
		}
		if !idea.Level.Valid() {
			slog.Warn("idea has unknown level, skipping", "file", path, "id", idea.ID, "level", idea.Level)
			continue
		}
		if _, exists := l.byID[idea.ID]; exists {
			slog.Warn("duplicate idea id, skipping", "file", path, "id", idea.ID)
			continue
		}

		l.ideas = append(l.ideas, &idea)
		l.byID[idea.ID] = &idea
		loaded++
	}

	return loaded, nil
}

// Get retrieves an idea by id
func (l *Loader) Get(id string) *models.ProjectIdea {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[id]
}

// List returns the full catalog in load order
func (l *Loader) List() []*models.ProjectIdea {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.ProjectIdea, len(l.ideas))
	copy(result, l.ideas)
	return result
}

// Add programmatically adds an idea (used by tests)
func (l *Loader) Add(idea *models.ProjectIdea) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byID[idea.ID]; exists {
		return
	}
	l.ideas = append(l.ideas, idea)
	l.byID[idea.ID] = idea
}

// Len returns the number of loaded ideas
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ideas)
}

// ideaFile represents the YAML structure of a catalog file
type ideaFile struct {
	Ideas []models.ProjectIdea `yaml:"ideas"`
}
