package tree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Meta is the catalog entry for one loaded tree.
type Meta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	Nodes       int    `json:"nodes"`
	Questions   int    `json:"questions"`
	Scored      bool   `json:"scored"`
	Source      string `json:"source"`
}

// Registry holds the set of selectable decision trees. Trees that fail
// validation or cycle detection are logged and excluded; they never appear in
// the catalog.
type Registry struct {
	trees map[string]*Document
	meta  map[string]Meta
}

// LoadDir loads every *.json file under dir. A missing or unreadable directory
// is an error; an invalid individual tree is not, it is just skipped.
func LoadDir(dir string, log *slog.Logger) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tree directory: %w", err)
	}

	r := &Registry{
		trees: make(map[string]*Document),
		meta:  make(map[string]Meta),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable tree file", "file", entry.Name(), "error", err)
			continue
		}
		doc, err := Load(data)
		if err != nil {
			log.Warn("skipping invalid tree", "file", entry.Name(), "error", err)
			continue
		}
		if _, exists := r.trees[doc.ID]; exists {
			log.Warn("skipping duplicate tree id", "file", entry.Name(), "tree_id", doc.ID)
			continue
		}
		r.trees[doc.ID] = doc
		r.meta[doc.ID] = Meta{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Version:     Version(doc),
			Nodes:       len(doc.Nodes),
			Questions:   doc.QuestionCount(),
			Scored:      doc.HasScoring(),
			Source:      entry.Name(),
		}
		log.Info("loaded tree", "tree_id", doc.ID, "title", doc.Title, "nodes", len(doc.Nodes))
	}

	return r, nil
}

// Get returns the tree with the given id.
func (r *Registry) Get(id string) (*Document, bool) {
	doc, ok := r.trees[id]
	return doc, ok
}

// List returns catalog entries sorted by tree id.
func (r *Registry) List() []Meta {
	out := make([]Meta, 0, len(r.meta))
	for _, m := range r.meta {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of loaded trees.
func (r *Registry) Len() int {
	return len(r.trees)
}
