// Package reconcile aligns the on-disk folder tree with the canonical
// category folder set before any file is placed: legacy and variant
// spellings of a category folder are merged into the canonical one, their
// contents carried over collision-safe, and the emptied variants removed.
package reconcile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mhartung/ablage/internal/common"
	"github.com/mhartung/ablage/internal/model"
)

// leadingDigits strips numeric prefixes like "01 " or "03_" from folder names.
var leadingDigits = regexp.MustCompile(`^[0-9]+[\s_]*`)

// CanonicalFolders returns the static mapping from normalized base names
// to canonical category folder names.
func CanonicalFolders() map[string]string {
	return map[string]string{
		"antrag":      "01 Antrag",
		"bescheid":    "02 Bescheid",
		"vertrag":     "03 Vertrag",
		"rechnung":    "04 Rechnung",
		"information": "05 Information",
	}
}

// Summary reports what a reconciliation run changed. A second run on the
// same tree yields an empty summary.
type Summary struct {
	Created []string
	Merged  []string
	Removed []string
}

// Empty reports whether the run changed nothing.
func (s *Summary) Empty() bool {
	return len(s.Created) == 0 && len(s.Merged) == 0 && len(s.Removed) == 0
}

// Reconciler merges folder-name variants into canonical category folders.
type Reconciler struct {
	canonical map[string]string
}

// New creates a reconciler for the given base→canonical table.
func New(canonical map[string]string) *Reconciler {
	return &Reconciler{canonical: canonical}
}

// NormalizeBase reduces a folder name to the base used for variant
// matching: lower-cased, underscores as spaces, numeric prefix stripped,
// first word only.
func NormalizeBase(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	base = strings.TrimSpace(leadingDigits.ReplaceAllString(base, ""))
	if fields := strings.Fields(base); len(fields) > 0 {
		return fields[0]
	}
	return base
}

// Reconcile synchronizes the folders directly under root with the
// canonical set. Failures on one category are logged and skipped; only an
// unreadable root aborts the run.
func (r *Reconciler) Reconcile(root string) (*Summary, error) {
	summary := &Summary{}

	entries, err := os.ReadDir(root)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", common.ErrSourceInaccessible, err)
	}

	variants := make(map[string][]model.FolderEntry)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		base := NormalizeBase(entry.Name())
		if _, ok := r.canonical[base]; !ok {
			continue
		}
		variants[base] = append(variants[base], model.FolderEntry{
			Path: filepath.Join(root, entry.Name()),
			Name: entry.Name(),
			Base: base,
		})
	}

	// Deterministic category order keeps logs and summaries stable.
	bases := make([]string, 0, len(r.canonical))
	for base := range r.canonical {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool {
		return r.canonical[bases[i]] < r.canonical[bases[j]]
	})

	for _, base := range bases {
		targetName := r.canonical[base]
		targetPath := filepath.Join(root, targetName)

		if _, err := os.Stat(targetPath); os.IsNotExist(err) {
			if err := os.Mkdir(targetPath, 0o750); err != nil {
				slog.Warn("failed to create category folder, skipping category",
					"folder", targetName,
					"error", err)
				continue
			}
			slog.Info("created category folder", "folder", targetName)
			summary.Created = append(summary.Created, targetName)
		}

		for _, variant := range variants[base] {
			if variant.Path == targetPath {
				continue
			}
			if err := r.mergeFolder(variant, targetPath); err != nil {
				slog.Warn("failed to merge folder variant",
					"variant", variant.Name,
					"target", targetName,
					"error", err)
				continue
			}
			summary.Merged = append(summary.Merged, variant.Name)

			if err := os.Remove(variant.Path); err != nil {
				slog.Warn("failed to remove emptied folder", "folder", variant.Name, "error", err)
				continue
			}
			slog.Info("removed merged folder", "folder", variant.Name, "target", targetName)
			summary.Removed = append(summary.Removed, variant.Name)
		}
	}

	return summary, nil
}

// mergeFolder moves every item in the variant folder into targetPath,
// renaming on collision. Individual item failures are logged; the first
// error is returned after the rest of the folder has been attempted.
func (r *Reconciler) mergeFolder(variant model.FolderEntry, targetPath string) error {
	items, err := os.ReadDir(variant.Path)
	if err != nil {
		return fmt.Errorf("failed to read variant folder: %w", err)
	}

	var firstErr error
	for _, item := range items {
		src := filepath.Join(variant.Path, item.Name())
		dest := filepath.Join(targetPath, item.Name())
		if _, err := os.Stat(dest); err == nil {
			dest, err = collisionFreeName(targetPath, item.Name())
			if err != nil {
				slog.Warn("no collision-free name available", "item", item.Name(), "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}
		if err := os.Rename(src, dest); err != nil {
			slog.Warn("failed to move item during merge", "item", item.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// collisionFreeName finds an unused "<stem>_altN<ext>" name in dir.
func collisionFreeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < 100; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_alt%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %q after 99 attempts", name)
}
