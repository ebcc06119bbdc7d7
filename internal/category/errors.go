package category

import "errors"

// Errors returned by the service and the repositories. Messages are shown
// to admin users as-is.
var (
	ErrNotFound        = errors.New("category not found")
	ErrHasChildren     = errors.New("category has children and cannot be deleted")
	ErrConfirmRequired = errors.New("deleting a root category with children requires confirmation")
	ErrTooDeep         = errors.New("categories cannot be nested below a leaf category")
	ErrSlugTaken       = errors.New("slug is already used by another leaf category")
	ErrNotSiblings     = errors.New("categories do not share a parent")
	ErrCannotMove      = errors.New("category is already at the end of its sibling list")
)

// ValidationError reports a bad input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
