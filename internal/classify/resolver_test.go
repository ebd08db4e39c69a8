package classify

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mhartung/ablage/internal/knowledge"
	"github.com/mhartung/ablage/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrompter struct {
	choice   service.CategoryChoice
	requests []service.CategoryRequest
}

func (s *stubPrompter) ChooseCategory(_ context.Context, req service.CategoryRequest) (service.CategoryChoice, error) {
	s.requests = append(s.requests, req)
	return s.choice, nil
}

func (s *stubPrompter) ConfirmOverwrite(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *stubPrompter) ConfirmProceedUnsynced(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func newTestStore(t *testing.T) *knowledge.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".ablage_knowledge.json")
	store := knowledge.NewStore(path, knowledge.DefaultCategories(), knowledge.LegacyMigrations())
	require.NoError(t, store.Load())
	require.NoError(t, store.EnsureDefaults())
	return store
}

func TestResolver_SuggestSymmetricSubstring(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store, &stubPrompter{})

	// "invoice" is a seed token of "04 Rechnung". Both directions of the
	// partial match must resolve: candidate inside known and known inside
	// candidate.
	tests := []struct {
		token string
		want  string
	}{
		{"Invoice", "04 Rechnung"},
		{"invoices", "04 Rechnung"},
		{"the invoice", "04 Rechnung"},
		{"Vertrag Miete", "03 Vertrag"},
		{"inf", "05 Information"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := resolver.Suggest(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_SuggestNoMatch(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store, &stubPrompter{})

	_, ok := resolver.Suggest("Lohnzettel XYZ")
	assert.False(t, ok)

	_, ok = resolver.Suggest("   ")
	assert.False(t, ok)
}

func TestResolver_SuggestEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ablage_knowledge.json")
	store := knowledge.NewStore(path, nil, nil)
	require.NoError(t, store.Load())
	resolver := NewResolver(store, &stubPrompter{})

	_, ok := resolver.Suggest("invoice")
	assert.False(t, ok, "a store with no learned tokens must force escalation")
}

func TestResolver_SuggestFirstMatchWins(t *testing.T) {
	// "form" is seeded under "01 Antrag" and "information" under
	// "05 Information". "informal" contains "form" and is contained by
	// nothing else first, so category iteration order decides: 01 Antrag
	// wins. This order dependence is inherited behavior; if it changes,
	// existing folder trees may re-sort differently.
	store := newTestStore(t)
	resolver := NewResolver(store, &stubPrompter{})

	got, ok := resolver.Suggest("informal")
	require.True(t, ok)
	assert.Equal(t, "01 Antrag", got)
}

func TestResolver_ResolveEscalatesAndLearns(t *testing.T) {
	store := newTestStore(t)
	prompter := &stubPrompter{
		choice: service.CategoryChoice{Category: "04 Rechnung", DocType: "Lohnzettel"},
	}
	resolver := NewResolver(store, prompter)

	category, err := resolver.Resolve(context.Background(), "20230110_Lohnzettel_Schmidt.pdf", "Lohnzettel Schmidt")
	require.NoError(t, err)
	assert.Equal(t, "04 Rechnung", category)

	// The prompter saw the token and the candidate list with known types.
	require.Len(t, prompter.requests, 1)
	req := prompter.requests[0]
	assert.Equal(t, "Lohnzettel Schmidt", req.DocType)
	require.NotEmpty(t, req.Candidates)
	assert.Equal(t, "01 Antrag", req.Candidates[0].Name)
	assert.Contains(t, req.Candidates[0].KnownTypes, "antrag")

	// The narrowed token was learned, so the next file resolves silently.
	got, ok := resolver.Suggest("Lohnzettel")
	require.True(t, ok)
	assert.Equal(t, "04 Rechnung", got)
}

func TestResolver_ResolveFallsBackToOriginalToken(t *testing.T) {
	store := newTestStore(t)
	prompter := &stubPrompter{
		choice: service.CategoryChoice{Category: "05 Information"},
	}
	resolver := NewResolver(store, prompter)

	_, err := resolver.Resolve(context.Background(), "newsletter.pdf", "Mieterrundschreiben")
	require.NoError(t, err)

	info, ok := store.Get("05 Information")
	require.True(t, ok)
	assert.True(t, info.KnowsToken("mieterrundschreiben"))
}
