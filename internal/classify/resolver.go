// Package classify resolves document-type tokens to filing categories
// using the learned knowledge store, escalating to the operator when no
// learned token matches.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mhartung/ablage/internal/knowledge"
	"github.com/mhartung/ablage/internal/service"
)

// Resolver matches tokens against learned categories. New associations
// confirmed by the operator are recorded back into the store.
type Resolver struct {
	store    *knowledge.Store
	prompter service.Prompter
}

// NewResolver creates a resolver over the given store and prompter.
func NewResolver(store *knowledge.Store, prompter service.Prompter) *Resolver {
	return &Resolver{store: store, prompter: prompter}
}

// Suggest returns the category whose learned tokens match the candidate.
// Matching is symmetric partial: the candidate may contain a known token
// or be contained in one, case-insensitively. The first matching category
// in store iteration order wins; there is no longest-match tie-break.
func (r *Resolver) Suggest(token string) (string, bool) {
	candidate := strings.ToLower(strings.TrimSpace(token))
	if candidate == "" {
		return "", false
	}

	for _, cat := range r.store.Categories() {
		for _, known := range cat.DocumentTypes {
			knownLower := strings.ToLower(known)
			if knownLower == "" {
				continue
			}
			if strings.Contains(candidate, knownLower) || strings.Contains(knownLower, candidate) {
				return cat.Name, true
			}
		}
	}
	return "", false
}

// Resolve classifies a token, asking the operator when Suggest comes up
// empty. The operator's confirmed token (possibly narrowed to a single
// word) is learned for the chosen category.
func (r *Resolver) Resolve(ctx context.Context, filename, token string) (string, error) {
	if category, ok := r.Suggest(token); ok {
		slog.Debug("token matched learned category", "token", token, "category", category)
		return category, nil
	}

	categories := r.store.Categories()
	candidates := make([]service.CandidateCategory, len(categories))
	for i, cat := range categories {
		candidates[i] = service.CandidateCategory{
			Name:       cat.Name,
			KnownTypes: append([]string(nil), cat.DocumentTypes...),
		}
	}

	choice, err := r.prompter.ChooseCategory(ctx, service.CategoryRequest{
		Filename:   filename,
		DocType:    token,
		Candidates: candidates,
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve category for %q: %w", token, err)
	}

	confirmed := choice.DocType
	if confirmed == "" {
		confirmed = token
	}
	if err := r.store.Record(choice.Category, confirmed); err != nil {
		return "", fmt.Errorf("failed to record learned token: %w", err)
	}
	return choice.Category, nil
}
