// Package knowledge implements the durable category knowledge store: a
// JSON file mapping canonical category names to the document-type tokens
// learned for them across sessions.
package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mhartung/ablage/internal/model"
)

// Store holds the learned category mapping and persists every mutation
// immediately. It is single-session: no locking against other writers.
type Store struct {
	categories map[string]*model.Category
	migrations map[string]string
	now        func() time.Time
	path       string
	defaults   []model.Category
	order      []string
}

// NewStore creates a store persisted at path. The defaults and migration
// table are injected so tests can run against reduced category sets.
func NewStore(path string, defaults []model.Category, migrations map[string]string) *Store {
	return &Store{
		path:       path,
		defaults:   defaults,
		migrations: migrations,
		categories: make(map[string]*model.Category),
		now:        time.Now,
	}
}

// persistedCategory is the on-disk shape of one category. Unknown keys in
// the file are ignored; missing keys get zero values.
type persistedCategory struct {
	DocumentTypes []string `json:"document_types"`
	CreatedAt     string   `json:"created_at"`
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted mapping. A missing file yields an empty store;
// unparseable content is logged and also yields an empty store, so a
// damaged knowledge file never aborts a session. File key order is
// preserved because it drives resolver iteration order.
func (s *Store) Load() error {
	s.categories = make(map[string]*model.Category)
	s.order = nil

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read knowledge file: %w", err)
	}

	if err := s.decode(data); err != nil {
		slog.Warn("knowledge file unreadable, starting with empty store",
			"path", s.path,
			"error", err)
		s.categories = make(map[string]*model.Category)
		s.order = nil
	}
	return nil
}

// decode parses the knowledge file with a token stream so the on-disk
// category order survives the round trip.
func (s *Store) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected category name, got %v", keyTok)
		}

		var pc persistedCategory
		if err := dec.Decode(&pc); err != nil {
			return err
		}

		createdAt, err := time.Parse(time.RFC3339, pc.CreatedAt)
		if err != nil {
			// Older knowledge files carry zone-less ISO-8601 timestamps.
			createdAt, err = time.Parse("2006-01-02T15:04:05", pc.CreatedAt)
		}
		if err != nil {
			createdAt = s.now()
		}
		cat := &model.Category{
			Name:          name,
			DocumentTypes: pc.DocumentTypes,
			CreatedAt:     createdAt,
		}
		if cat.DocumentTypes == nil {
			cat.DocumentTypes = []string{}
		}
		if _, exists := s.categories[name]; !exists {
			s.order = append(s.order, name)
		}
		s.categories[name] = cat
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// EnsureDefaults guarantees the baseline categories exist: legacy names
// are migrated, underscore variants of a default are folded into the
// spaced form, and missing defaults are injected with their seed tokens.
// The updated state is saved once at the end.
func (s *Store) EnsureDefaults() error {
	for oldName, newName := range s.migrations {
		old, hasOld := s.categories[oldName]
		_, hasNew := s.categories[newName]
		if hasOld && !hasNew {
			slog.Info("migrating legacy category", "from", oldName, "to", newName)
			old.Name = newName
			s.categories[newName] = old
			s.replaceInOrder(oldName, newName)
			delete(s.categories, oldName)
		}
	}

	for _, def := range s.defaults {
		if _, ok := s.categories[def.Name]; ok {
			continue
		}
		underscored := strings.ReplaceAll(def.Name, " ", "_")
		if variant, ok := s.categories[underscored]; ok {
			variant.Name = def.Name
			s.categories[def.Name] = variant
			s.replaceInOrder(underscored, def.Name)
			delete(s.categories, underscored)
			continue
		}
		cat := def
		cat.DocumentTypes = append([]string(nil), def.DocumentTypes...)
		s.categories[def.Name] = &cat
		s.order = append(s.order, def.Name)
	}

	s.normalizeOrder()
	return s.Save()
}

// replaceInOrder swaps a renamed category in place, keeping its position.
func (s *Store) replaceInOrder(oldName, newName string) {
	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
			return
		}
	}
	s.order = append(s.order, newName)
}

// normalizeOrder puts the default categories first, in their numbered
// order, followed by user-added categories in their original order. The
// resolver's first-match-wins behavior depends on this being stable.
func (s *Store) normalizeOrder() {
	isDefault := make(map[string]bool, len(s.defaults))
	for _, def := range s.defaults {
		isDefault[def.Name] = true
	}

	var head, tail []string
	for _, name := range s.order {
		if isDefault[name] {
			head = append(head, name)
		} else {
			tail = append(tail, name)
		}
	}
	sort.Strings(head)
	s.order = append(head, tail...)
}

// Categories returns all categories in resolver iteration order.
func (s *Store) Categories() []model.Category {
	out := make([]model.Category, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.categories[name])
	}
	return out
}

// Get returns a category by name.
func (s *Store) Get(name string) (model.Category, bool) {
	cat, ok := s.categories[name]
	if !ok {
		return model.Category{}, false
	}
	return *cat, true
}

// AddCategory creates an empty category if it does not exist yet and
// persists the store.
func (s *Store) AddCategory(name string) error {
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if _, ok := s.categories[name]; ok {
		return nil
	}
	s.categories[name] = &model.Category{
		Name:          name,
		DocumentTypes: []string{},
		CreatedAt:     s.now(),
	}
	s.order = append(s.order, name)
	return s.Save()
}

// Record associates token with category, creating the category when
// needed, and persists immediately. Tokens already known to the category
// (case-insensitively) are a no-op without a save.
func (s *Store) Record(category, token string) error {
	if category == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	cat, ok := s.categories[category]
	if !ok {
		cat = &model.Category{
			Name:          category,
			DocumentTypes: []string{},
			CreatedAt:     s.now(),
		}
		s.categories[category] = cat
		s.order = append(s.order, category)
	}

	if cat.KnowsToken(token) {
		return nil
	}

	cat.DocumentTypes = append(cat.DocumentTypes, token)
	slog.Info("learned document type", "category", category, "token", token)
	return s.Save()
}

// Save atomically rewrites the knowledge file with the full in-memory
// state: temp file in the same directory, then rename over the target.
func (s *Store) Save() error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, name := range s.order {
		cat := s.categories[name]
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("failed to encode category name: %w", err)
		}
		value, err := json.MarshalIndent(persistedCategory{
			DocumentTypes: cat.DocumentTypes,
			CreatedAt:     cat.CreatedAt.Format(time.RFC3339),
		}, "  ", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode category %q: %w", name, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(s.order)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ablage_knowledge-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp knowledge file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write knowledge file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close knowledge file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace knowledge file: %w", err)
	}
	return nil
}
