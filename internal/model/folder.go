package model

// FolderEntry is one directory under the sorting root considered during
// folder reconciliation.
type FolderEntry struct {
	// Path is the absolute location of the folder.
	Path string
	// Name is the folder's base name as found on disk.
	Name string
	// Base is the normalized name used for variant matching.
	Base string
}
