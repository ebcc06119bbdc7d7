package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wecamp/internal/models"
)

func cat(id, name, slug string, parent string, order int) models.Category {
	c := models.Category{ID: id, Name: name, Slug: slug, Order: order}
	if parent != "" {
		c.ParentID = models.StringPtr(parent)
	}
	return c
}

// kampTree is the three-record example from the storefront.
func kampTree() []models.Category {
	return []models.Category{
		cat("r1", "Kamp Malzemeleri", "kamp-malzemeleri", "", 0),
		cat("c1", "Kamp Mutfağı", "kamp-mutfagi", "r1", 0),
		cat("l1", "Kamp Ocakları", "kamp-ocaklari", "c1", 0),
	}
}

func TestProject_KampExample(t *testing.T) {
	got, err := Project("r1", kampTree())
	require.NoError(t, err)

	assert.Equal(t, "Kamp Malzemeleri", got.Name)
	assert.Empty(t, got.Path)
	require.Len(t, got.Children, 1)

	col := got.Children[0]
	assert.Equal(t, "Kamp Mutfağı", col.Name)
	assert.Equal(t, models.RoleColumn, col.Role)
	assert.Empty(t, col.Path)
	require.Len(t, col.Children, 1)

	leaf := col.Children[0]
	assert.Equal(t, "Kamp Ocakları", leaf.Name)
	assert.Equal(t, models.RoleLeaf, leaf.Role)
	assert.Equal(t, "/category/kamp-ocaklari", leaf.Path)
	assert.Nil(t, leaf.Children)
}

func TestProject_OmitsEmptyChildren(t *testing.T) {
	flat := []models.Category{
		cat("r1", "Root", "root", "", 0),
		cat("c1", "Empty Column", "empty-column", "r1", 0),
	}
	got, err := Project("r1", flat)
	require.NoError(t, err)

	b, err := json.Marshal(got.Children[0])
	require.NoError(t, err)
	assert.NotContains(t, string(b), "children")
	assert.NotContains(t, string(b), "path")
}

func TestProject_UnknownRoot(t *testing.T) {
	_, err := Project("nope", kampTree())
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestProject_RootsAndColumnsNeverNavigable(t *testing.T) {
	flat := []models.Category{
		cat("r1", "Kamp", "kamp", "", 0),
		cat("r2", "Outdoor", "outdoor", "", 1),
		cat("c1", "Mutfak", "mutfak", "r1", 0),
		cat("c2", "Uyku", "uyku", "r1", 1),
		cat("c3", "Giyim", "giyim", "r2", 0),
		cat("l1", "Ocak", "ocak", "c1", 0),
		cat("l2", "Tulum", "tulum", "c2", 0),
	}

	for _, root := range Forest(flat) {
		assert.Empty(t, root.Path, "root %s", root.ID)
		assert.Equal(t, models.RoleRoot, root.Role)
		for _, col := range root.Children {
			assert.Empty(t, col.Path, "column %s", col.ID)
			assert.Equal(t, models.RoleColumn, col.Role)
			for _, leaf := range col.Children {
				assert.Equal(t, "/category/"+leaf.Slug, leaf.Path)
			}
		}
	}
}

func TestProject_ChildlessColumnHasNoPath(t *testing.T) {
	flat := []models.Category{
		cat("r1", "Kamp", "kamp", "", 0),
		cat("c1", "Lonely", "lonely", "r1", 0),
	}
	role, err := Classify(flat, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleColumn, role)

	got, err := Project("c1", flat)
	require.NoError(t, err)
	assert.Empty(t, got.Path)
}

func TestProject_SiblingOrderTiesKeepInsertionOrder(t *testing.T) {
	flat := []models.Category{
		cat("r1", "Root", "root", "", 0),
		cat("c-b", "B", "b", "r1", 1),
		cat("c-a", "A", "a", "r1", 1),
		cat("c-z", "Z", "z", "r1", 0),
	}
	got, err := Project("r1", flat)
	require.NoError(t, err)

	var ids []string
	for _, c := range got.Children {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c-z", "c-b", "c-a"}, ids)
}

func TestProject_StopsAtLeaves(t *testing.T) {
	flat := append(kampTree(), cat("x1", "Too Deep", "too-deep", "l1", 0))

	got, err := Project("r1", flat)
	require.NoError(t, err)
	leaf := got.Children[0].Children[0]
	assert.Nil(t, leaf.Children)

	role, err := Classify(flat, "x1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeaf, role)
}

func TestProject_CyclicNonRootsTerminate(t *testing.T) {
	flat := []models.Category{
		cat("a", "A", "a", "b", 0),
		cat("b", "B", "b", "a", 0),
	}
	got, err := Project("a", flat)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeaf, got.Role)
}

func TestLeaves(t *testing.T) {
	flat := append(kampTree(),
		cat("l2", "Kamp Tencereleri", "kamp-tencereleri", "c1", 1),
		cat("r2", "Boş", "bos", "", 1),
	)
	leaves := Leaves(flat)
	require.Len(t, leaves, 2)
	assert.Equal(t, Leaf{
		ID: "l1", Name: "Kamp Ocakları", Slug: "kamp-ocaklari",
		Path: "/category/kamp-ocaklari", Root: "Kamp Malzemeleri", Column: "Kamp Mutfağı",
	}, leaves[0])
	assert.Equal(t, "l2", leaves[1].ID)
}

func TestAncestors(t *testing.T) {
	chain, err := Ancestors(kampTree(), "l1")
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "r1", chain[0].ID)
	assert.Equal(t, "c1", chain[1].ID)
	assert.Equal(t, "l1", chain[2].ID)

	_, err = Ancestors(kampTree(), "missing")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDescendants_DeepestFirst(t *testing.T) {
	flat := append(kampTree(),
		cat("c2", "Uyku", "uyku", "r1", 1),
		cat("l2", "Tulum", "tulum", "c2", 0),
	)
	got := Descendants(flat, "r1")
	assert.ElementsMatch(t, []string{"l1", "c1", "l2", "c2"}, got)

	pos := map[string]int{}
	for i, id := range got {
		pos[id] = i
	}
	assert.Less(t, pos["l1"], pos["c1"])
	assert.Less(t, pos["l2"], pos["c2"])
}

func TestSiblings(t *testing.T) {
	flat := []models.Category{
		cat("r2", "Two", "two", "", 2),
		cat("r1", "One", "one", "", 1),
		cat("c1", "Col", "col", "r1", 0),
	}
	roots := Siblings(flat, nil)
	require.Len(t, roots, 2)
	assert.Equal(t, "r1", roots[0].ID)

	kids := Siblings(flat, models.StringPtr("r1"))
	require.Len(t, kids, 1)
	assert.Equal(t, "c1", kids[0].ID)
}

func TestCheckForest(t *testing.T) {
	tests := []struct {
		name string
		flat []models.Category
		want error
	}{
		{name: "well formed", flat: kampTree()},
		{
			name: "duplicate id",
			flat: []models.Category{cat("a", "A", "a", "", 0), cat("a", "A2", "a2", "", 1)},
			want: ErrDuplicateID,
		},
		{
			name: "dangling parent",
			flat: []models.Category{cat("a", "A", "a", "ghost", 0)},
			want: ErrDanglingParent,
		},
		{
			name: "two-node cycle",
			flat: []models.Category{cat("a", "A", "a", "b", 0), cat("b", "B", "b", "a", 0)},
			want: ErrCycle,
		},
		{
			name: "self parent",
			flat: []models.Category{cat("a", "A", "a", "a", 0)},
			want: ErrCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckForest(tt.flat)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
