// Package cloudpath detects cloud-synced storage roots and resolves
// application file locations inside or outside them.
package cloudpath

import (
	"os"
	"path/filepath"
	"strings"
)

// KnowledgeFileName is the well-known name of the persisted knowledge file.
const KnowledgeFileName = ".ablage_knowledge.json"

// Provider describes one cloud storage provider: the path fragments that
// identify a directory as living inside it, and where its root usually is.
type Provider struct {
	Name        string
	DefaultRoot string
	Indicators  []string
}

// DefaultProviders returns the built-in provider table.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:        "icloud",
			DefaultRoot: "~/Library/Mobile Documents/com~apple~CloudDocs",
			Indicators:  []string{"Library/Mobile Documents/com~apple~CloudDocs", "iCloud"},
		},
		{
			Name:        "google_drive",
			DefaultRoot: "~/Google Drive",
			Indicators:  []string{"Google Drive", "GoogleDrive"},
		},
		{
			Name:        "dropbox",
			DefaultRoot: "~/Dropbox",
			Indicators:  []string{"Dropbox"},
		},
		{
			Name:        "onedrive",
			DefaultRoot: "~/OneDrive",
			Indicators:  []string{"OneDrive"},
		},
	}
}

// Detector matches paths against a provider table.
type Detector struct {
	providers []Provider
}

// NewDetector creates a detector for the given provider table.
func NewDetector(providers []Provider) *Detector {
	return &Detector{providers: providers}
}

// Detect reports which provider, if any, the path lives under. Matching is
// case-insensitive and tolerates Windows path separators.
func (d *Detector) Detect(path string) (Provider, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(path, `\`, "/"))
	for _, p := range d.providers {
		for _, indicator := range p.Indicators {
			if strings.Contains(normalized, strings.ToLower(indicator)) {
				return p, true
			}
		}
	}
	return Provider{}, false
}

// Root returns the provider's root directory if it exists on this machine.
func (d *Detector) Root(p Provider) (string, bool) {
	root := ExpandPath(p.DefaultRoot)
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		return root, true
	}
	return "", false
}

// KnowledgeFilePath decides where the knowledge file for sourceDir lives.
// A file already present at the detected provider's root wins; otherwise
// the user's home directory is used, so learning is shared across local
// folders by default and across machines when the operator keeps it in
// cloud storage.
func (d *Detector) KnowledgeFilePath(sourceDir string) string {
	if p, ok := d.Detect(sourceDir); ok {
		if root, ok := d.Root(p); ok {
			candidate := filepath.Join(root, KnowledgeFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", KnowledgeFileName)
	}
	return filepath.Join(home, KnowledgeFileName)
}

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
