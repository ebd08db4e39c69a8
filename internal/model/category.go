// Package model defines the core domain types shared across the application.
package model

import (
	"strings"
	"time"
)

// Category represents a canonical filing category and the document-type
// tokens known to belong to it.
type Category struct {
	CreatedAt     time.Time
	Name          string
	DocumentTypes []string
}

// KnowsToken reports whether the category already contains the token,
// compared case-insensitively.
func (c *Category) KnowsToken(token string) bool {
	for _, t := range c.DocumentTypes {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
