package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartung/ablage/internal/common"
)

// pdfContent is a minimal header that sniffs as application/pdf.
var pdfContent = []byte("%PDF-1.4\n%%EOF\n")

// jpegContent is a minimal JPEG magic prefix.
var jpegContent = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func writeDoc(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, content, 0o600))
}

func TestDiscover_FindsDocumentsRecursively(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "20230401_Rechnung.pdf"), pdfContent)
	writeDoc(t, filepath.Join(root, "Eingang", "scan.jpg"), jpegContent)
	writeDoc(t, filepath.Join(root, "notes.txt"), []byte("plain text"))

	files, err := Discover(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "20230401_Rechnung.pdf"),
		filepath.Join(root, "Eingang", "scan.jpg"),
	}, files)
}

func TestDiscover_SkipsYearFolders(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "04 Rechnung", "2023", "2023-04-01 Strom.pdf"), pdfContent)
	writeDoc(t, filepath.Join(root, "04 Rechnung", "unsortiert.pdf"), pdfContent)

	files, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "04 Rechnung", "unsortiert.pdf")}, files)
}

func TestDiscover_SkipsExtensionSpoofedFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "echt.pdf"), pdfContent)
	writeDoc(t, filepath.Join(root, "luegt.pdf"), []byte("hello, this is just text\n"))

	files, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "echt.pdf")}, files)
}

func TestDiscover_KeepsEmptyPlaceholders(t *testing.T) {
	// An empty file is how cloud clients represent a not-yet-downloaded
	// document; discovery must keep it for the readiness check.
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "placeholder.pdf"), nil)

	files, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "placeholder.pdf")}, files)
}

func TestDiscover_InaccessibleRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSourceInaccessible))
}
