package category

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"wecamp/internal/models"
	"wecamp/internal/slug"
	"wecamp/internal/tree"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackDoc struct {
	Roots []struct {
		Name    string `yaml:"name"`
		Icon    string `yaml:"icon"`
		Columns []struct {
			Name   string   `yaml:"name"`
			Leaves []string `yaml:"leaves"`
		} `yaml:"columns"`
	} `yaml:"roots"`
}

// idSep joins the slug path of a fallback id.
const idSep = "--"

var (
	fallbackOnce sync.Once
	fallbackList []models.Category
	fallbackErr  error
)

// Fallback returns the static legacy category tree as a flat list. Ids are
// stable ("legacy-" plus the slug path) so repeated seeds are idempotent.
// Path segments are joined with "--", which a slug never contains, so ids
// of different nodes cannot collide.
func Fallback() ([]models.Category, error) {
	fallbackOnce.Do(func() {
		fallbackList, fallbackErr = parseFallback(fallbackYAML)
	})
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	out := make([]models.Category, len(fallbackList))
	copy(out, fallbackList)
	return out, nil
}

func parseFallback(data []byte) ([]models.Category, error) {
	var doc fallbackDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fallback tree: %w", err)
	}

	var flat []models.Category
	for ri, root := range doc.Roots {
		rootSlug := slug.Generate(root.Name)
		rootID := "legacy-" + rootSlug
		flat = append(flat, models.Category{
			ID:    rootID,
			Name:  root.Name,
			Slug:  rootSlug,
			Icon:  root.Icon,
			Order: ri,
		})
		for ci, col := range root.Columns {
			colSlug := slug.Generate(col.Name)
			colID := rootID + idSep + colSlug
			flat = append(flat, models.Category{
				ID:       colID,
				Name:     col.Name,
				Slug:     colSlug,
				ParentID: models.StringPtr(rootID),
				Order:    ci,
			})
			for li, name := range col.Leaves {
				leafSlug := slug.Generate(name)
				flat = append(flat, models.Category{
					ID:       colID + idSep + leafSlug,
					Name:     name,
					Slug:     leafSlug,
					ParentID: models.StringPtr(colID),
					Order:    li,
				})
			}
		}
	}

	if err := tree.CheckForest(flat); err != nil {
		return nil, fmt.Errorf("fallback tree: %w", err)
	}
	return flat, nil
}

// Seed fills an empty repository with the fallback tree. It reports how
// many categories were inserted; a non-empty repository is left alone.
func Seed(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("category store already populated, skipping seed", "count", len(existing))
		return 0, nil
	}

	flat, err := Fallback()
	if err != nil {
		return 0, err
	}
	// Parents precede children in the flat list.
	for i := range flat {
		if _, err := repo.Create(ctx, &flat[i]); err != nil {
			return i, fmt.Errorf("seed %s: %w", flat[i].ID, err)
		}
	}
	slog.Info("seeded category store", "count", len(flat))
	return len(flat), nil
}
