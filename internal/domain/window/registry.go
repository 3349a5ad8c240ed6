package window

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"
)

// Entry describes a registered application
type Entry struct {
	ID             AppID  `yaml:"id" json:"id"`
	DisplayName    string `yaml:"displayName" json:"displayName"`
	Component      string `yaml:"component" json:"component"`
	Icon           string `yaml:"icon" json:"icon"`
	DefaultSize    Size   `yaml:"defaultSize" json:"defaultSize"`
	Maximized      bool   `yaml:"maximized" json:"maximized"`
	AutoFullscreen bool   `yaml:"autoFullscreen" json:"autoFullscreen"`
	InDock         bool   `yaml:"inDock" json:"inDock"`
}

// Registry maps app ids to their entries. Every id that ever enters the
// window stack must resolve to exactly one entry.
type Registry struct {
	mu      sync.RWMutex
	entries map[AppID]Entry
}

// NewRegistry creates a registry holding the given entries
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[AppID]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

// DefaultRegistry returns the built-in application set
func DefaultRegistry() *Registry {
	return NewRegistry(
		Entry{ID: AppAbout, DisplayName: "About Me", Component: "AboutApp", Icon: "user", DefaultSize: Size{Width: 720, Height: 520}, InDock: true},
		Entry{ID: AppProjects, DisplayName: "Projects", Component: "ProjectsApp", Icon: "folder-kanban", DefaultSize: Size{Width: 960, Height: 640}, Maximized: true, InDock: true},
		Entry{ID: AppFAQ, DisplayName: "FAQ", Component: "FAQApp", Icon: "help-circle", DefaultSize: Size{Width: 640, Height: 560}, InDock: true},
		Entry{ID: AppMarkdown, DisplayName: "Markdown Viewer", Component: "MarkdownViewer", Icon: "file-text", DefaultSize: Size{Width: 760, Height: 600}},
		Entry{ID: AppTerminal, DisplayName: "Terminal", Component: "TerminalApp", Icon: "terminal", DefaultSize: Size{Width: 680, Height: 420}, InDock: true},
		Entry{ID: AppSettings, DisplayName: "Settings", Component: "SettingsApp", Icon: "settings", DefaultSize: Size{Width: 700, Height: 500}, InDock: true},
		Entry{ID: AppFolder, DisplayName: "Finder", Component: "FolderApp", Icon: "folder", DefaultSize: Size{Width: 720, Height: 480}},
		Entry{ID: AppBrowser, DisplayName: "Browser", Component: "BrowserApp", Icon: "globe", DefaultSize: Size{Width: 1024, Height: 700}, AutoFullscreen: true},
	)
}

// Register adds or replaces an entry
func (r *Registry) Register(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("registry entry has empty id")
	}
	if e.Component == "" {
		return fmt.Errorf("registry entry %s has no component", e.ID)
	}

	r.mu.Lock()
	r.entries[e.ID] = e
	r.mu.Unlock()
	return nil
}

// Lookup returns the entry for id
func (r *Registry) Lookup(id AppID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	return e, ok
}

// Resolve returns the entry for id or ErrUnregisteredApp
func (r *Registry) Resolve(id AppID) (Entry, error) {
	e, ok := r.Lookup(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnregisteredApp, id)
	}
	return e, nil
}

// MustLookup panics when id is not registered
func (r *Registry) MustLookup(id AppID) Entry {
	e, err := r.Resolve(id)
	if err != nil {
		panic(err)
	}
	return e
}

// Entries returns all entries sorted by id
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered apps
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Manifest is the on-disk form of a set of registry entries
type Manifest struct {
	Apps []Entry `yaml:"apps"`
}

// ParseManifest decodes a YAML manifest
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse app manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest registers every entry of the YAML manifest at path. Entries
// override built-ins with the same id.
func (r *Registry) LoadManifest(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read app manifest: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return 0, err
	}

	for _, e := range m.Apps {
		if err := r.Register(e); err != nil {
			return 0, fmt.Errorf("invalid manifest %s: %w", path, err)
		}
	}
	return len(m.Apps), nil
}
