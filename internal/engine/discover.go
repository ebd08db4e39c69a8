package engine

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mhartung/ablage/internal/common"
)

// yearDirName matches directory names that are exactly four digits:
// already sorted year folders, excluded from discovery so files are not
// re-processed.
var yearDirName = regexp.MustCompile(`^\d{4}$`)

var documentExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Discover enumerates document files under root, recursively, skipping
// year folders. Files whose sniffed content type contradicts their
// extension are dropped with a warning; unreadable subtrees are skipped.
// Only an inaccessible root itself is an error.
func Discover(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %v", common.ErrSourceInaccessible, err)
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if yearDirName.MatchString(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !documentExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		if !contentLooksLikeDocument(path) {
			slog.Warn("skipping file, content does not match extension", "path", path)
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// contentLooksLikeDocument sniffs the file and accepts PDFs and images.
// Detection failures and inconclusive results (a cloud placeholder that
// is empty or cannot be read yet) do not disqualify the file; the
// readiness check deals with those.
func contentLooksLikeDocument(path string) bool {
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		return true
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return true
	}
	if mtype.Is("application/pdf") || mtype.Is("application/octet-stream") {
		return true
	}
	return strings.HasPrefix(mtype.String(), "image/")
}
