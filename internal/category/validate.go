package category

import (
	"strings"
	"unicode/utf8"

	"wecamp/internal/slug"
)

// Validation limits for category fields.
const (
	maxNameLen        = 120
	maxSlugLen        = 160
	maxIconLen        = 16
	maxDescriptionLen = 2_000
)

// validateFields checks a category's editable fields and returns the first
// problem found.
func validateFields(name, categorySlug, icon, description string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "Name is required.")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return invalid("name", "Name is too long (max 120 characters).")
	}
	if categorySlug == "" {
		return invalid("slug", "Slug is required.")
	}
	if utf8.RuneCountInString(categorySlug) > maxSlugLen {
		return invalid("slug", "Slug is too long (max 160 characters).")
	}
	if !slug.Valid(categorySlug) {
		return invalid("slug", "Slug may only contain lowercase letters, digits and single hyphens.")
	}
	if utf8.RuneCountInString(icon) > maxIconLen {
		return invalid("icon", "Icon is too long (max 16 characters).")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return invalid("description", "Description is too long (max 2,000 characters).")
	}
	return nil
}
