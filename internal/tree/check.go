package tree

import (
	"errors"
	"fmt"

	"wecamp/internal/models"
)

var (
	ErrDuplicateID    = errors.New("duplicate category id")
	ErrDanglingParent = errors.New("parent category does not exist")
	ErrCycle          = errors.New("category parent chain forms a cycle")
)

// CheckForest verifies that flat is a well-formed forest: unique ids, every
// parent present, no parent cycles.
func CheckForest(flat []models.Category) error {
	byID := make(map[string]*models.Category, len(flat))
	for i := range flat {
		c := &flat[i]
		if _, dup := byID[c.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		byID[c.ID] = c
	}

	for i := range flat {
		c := &flat[i]
		if c.ParentID != nil {
			if _, ok := byID[*c.ParentID]; !ok {
				return fmt.Errorf("%w: %s (parent of %s)", ErrDanglingParent, *c.ParentID, c.ID)
			}
		}
	}

	// Walk each parent chain; a chain longer than the list must loop.
	for i := range flat {
		c := &flat[i]
		steps := 0
		for c.ParentID != nil {
			c = byID[*c.ParentID]
			steps++
			if steps > len(flat) {
				return fmt.Errorf("%w: through %s", ErrCycle, flat[i].ID)
			}
		}
	}
	return nil
}
