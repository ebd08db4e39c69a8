package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartung/ablage/internal/classify"
	"github.com/mhartung/ablage/internal/knowledge"
	"github.com/mhartung/ablage/internal/model"
	"github.com/mhartung/ablage/internal/service"
)

type memoryHistory struct {
	records []model.MoveRecord
}

func (h *memoryHistory) RecordMove(_ context.Context, record *model.MoveRecord) error {
	h.records = append(h.records, *record)
	return nil
}

func (h *memoryHistory) ListMoves(_ context.Context, limit int) ([]model.MoveRecord, error) {
	if limit > len(h.records) {
		limit = len(h.records)
	}
	return h.records[:limit], nil
}

func (h *memoryHistory) Migrate(_ context.Context) error { return nil }
func (h *memoryHistory) Close() error                    { return nil }

func newTestEngine(t *testing.T, root string, prompter service.Prompter, history service.History) *Engine {
	t.Helper()
	knowledgePath := filepath.Join(t.TempDir(), ".ablage_knowledge.json")
	store := knowledge.NewStore(knowledgePath, knowledge.DefaultCategories(), knowledge.LegacyMigrations())
	require.NoError(t, store.Load())
	require.NoError(t, store.EnsureDefaults())

	resolver := classify.NewResolver(store, prompter)
	return New(resolver, prompter, history, newFakeClock(), DefaultConfig(root, false))
}

func TestEngine_SortPlacesKnownDocuments(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "20230401_Rechnung_Strom.pdf"), pdfContent)

	prompter := &MockPrompter{}
	eng := newTestEngine(t, root, prompter, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	target := filepath.Join(root, "04 Rechnung", "2023", "2023-04-01 Rechnung_Strom.pdf")
	_, statErr := os.Stat(target)
	assert.NoError(t, statErr)

	assert.Equal(t, []string{"04 Rechnung"}, report.Categories())
	assert.Equal(t, []string{"2023/2023-04-01 Rechnung_Strom.pdf"}, report.Files("04 Rechnung"))
	assert.Empty(t, prompter.CategoryRequests, "known token must not escalate")
}

func TestEngine_SortNoYearGoesToCategoryRoot(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "Infoblatt_Hausordnung.pdf"), pdfContent)

	eng := newTestEngine(t, root, &MockPrompter{}, nil)
	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	target := filepath.Join(root, "05 Information", "Infoblatt_Hausordnung.pdf")
	_, statErr := os.Stat(target)
	assert.NoError(t, statErr, "file without year belongs directly in the category folder")

	assert.Equal(t, []string{"Infoblatt_Hausordnung.pdf"}, report.Files("05 Information"),
		"no-year files are reported without a year prefix")
}

func TestEngine_SortEscalatesUnknownToken(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "20230110_Lohnzettel.pdf"), pdfContent)

	prompter := &MockPrompter{
		CategoryChoices: []service.CategoryChoice{{Category: "04 Rechnung", DocType: "Lohnzettel"}},
	}
	eng := newTestEngine(t, root, prompter, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	require.Len(t, prompter.CategoryRequests, 1)
	assert.Equal(t, "Lohnzettel", prompter.CategoryRequests[0].DocType)
	assert.Equal(t, []string{"2023/2023-01-10 Lohnzettel.pdf"}, report.Files("04 Rechnung"))
}

func TestEngine_SortOverwriteDeclinedLeavesSourceUntouched(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "20230401_Rechnung.pdf")
	writeDoc(t, source, pdfContent)
	target := filepath.Join(root, "04 Rechnung", "2023", "2023-04-01 Rechnung.pdf")
	writeDoc(t, target, jpegContent)

	prompter := &MockPrompter{OverwriteAnswer: false}
	eng := newTestEngine(t, root, prompter, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{target}, prompter.OverwriteRequests)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.Empty())

	_, statErr := os.Stat(source)
	assert.NoError(t, statErr, "declined overwrite must not touch the source")

	existing, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, jpegContent, existing, "declined overwrite must not touch the target")
}

func TestEngine_SortOverwriteAccepted(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "20230401_Rechnung.pdf"), pdfContent)
	target := filepath.Join(root, "04 Rechnung", "2023", "2023-04-01 Rechnung.pdf")
	writeDoc(t, target, jpegContent)

	prompter := &MockPrompter{OverwriteAnswer: true}
	eng := newTestEngine(t, root, prompter, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Moved())
	replaced, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, pdfContent, replaced)
}

func TestEngine_SortSkipsAlreadySortedFile(t *testing.T) {
	root := t.TempDir()
	inPlace := filepath.Join(root, "04 Rechnung", "Rechnung.pdf")
	writeDoc(t, inPlace, pdfContent)

	prompter := &MockPrompter{}
	eng := newTestEngine(t, root, prompter, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, prompter.OverwriteRequests, "a file already at its target is not an overwrite")
	_, statErr := os.Stat(inPlace)
	assert.NoError(t, statErr)
}

func TestEngine_SortRecordsHistory(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "20230401_Rechnung.pdf"), pdfContent)
	writeDoc(t, filepath.Join(root, "Infoblatt.pdf"), pdfContent)

	history := &memoryHistory{}
	eng := newTestEngine(t, root, &MockPrompter{}, history)

	_, err := eng.Sort(context.Background())
	require.NoError(t, err)

	require.Len(t, history.records, 2)
	byCategory := make(map[string]model.MoveRecord)
	for _, rec := range history.records {
		byCategory[rec.Category] = rec
	}
	assert.Equal(t, "2023", byCategory["04 Rechnung"].Year)
	assert.Equal(t, model.NoYear, byCategory["05 Information"].Year)
	assert.True(t, byCategory["04 Rechnung"].Verified)
}

func TestEngine_SortInaccessibleRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	eng := newTestEngine(t, root, &MockPrompter{}, nil)

	report, err := eng.Sort(context.Background())
	require.Error(t, err)
	assert.True(t, report.Empty())
}

func TestEngine_SortEmptyRoot(t *testing.T) {
	eng := newTestEngine(t, t.TempDir(), &MockPrompter{}, nil)

	report, err := eng.Sort(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Empty())
}
