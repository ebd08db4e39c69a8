package knowledge

import (
	"time"

	"github.com/mhartung/ablage/internal/model"
)

// seedTime is the creation timestamp stamped on the built-in categories.
var seedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultCategories returns the fixed baseline category set. Every store
// re-injects these on load, so a fresh or corrupted knowledge file still
// yields a usable category table.
func DefaultCategories() []model.Category {
	return []model.Category{
		{
			Name:          "01 Antrag",
			DocumentTypes: []string{"antrag", "application", "bewerbung", "formular", "form"},
			CreatedAt:     seedTime,
		},
		{
			Name:          "02 Bescheid",
			DocumentTypes: []string{"bescheid", "decision", "entscheidung", "beschluss", "notice"},
			CreatedAt:     seedTime,
		},
		{
			Name:          "03 Vertrag",
			DocumentTypes: []string{"vertrag", "contract", "vereinbarung", "agreement"},
			CreatedAt:     seedTime,
		},
		{
			Name:          "04 Rechnung",
			DocumentTypes: []string{"rechnung", "invoice", "bill", "faktura", "beleg", "quittung"},
			CreatedAt:     seedTime,
		},
		{
			Name:          "05 Information",
			DocumentTypes: []string{"information", "info", "infoblatt", "mitteilung", "benachrichtigung"},
			CreatedAt:     seedTime,
		},
	}
}

// LegacyMigrations maps category names from older knowledge files to their
// current names. Applied once per load; the token set moves with the name
// unless the new name already exists.
func LegacyMigrations() map[string]string {
	return map[string]string{
		"01 Vertrag":     "03 Vertrag",
		"02 Information": "05 Information",
		"03 Rechnung":    "04 Rechnung",
	}
}
