// internal/domain/catalog/hierarchy_test.go
package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

type fakeCategoryStore struct {
	categories map[uint]*Category
	err        error
}

func (f *fakeCategoryStore) FindCategoryByID(ctx context.Context, id uint) (*Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories[id], nil
}

func parent(id uint) *uint { return &id }

func TestAncestorsWalksChain(t *testing.T) {
	store := &fakeCategoryStore{categories: map[uint]*Category{
		1:  {ID: 1, Name: "Electronics"},
		4:  {ID: 4, Name: "Computers", ParentID: parent(1)},
		10: {ID: 10, Name: "Laptops", ParentID: parent(4)},
	}}
	resolver := NewHierarchyResolver(store, 50)

	chain, err := resolver.Ancestors(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 1}, chain)
}

func TestAncestorsRootCategory(t *testing.T) {
	store := &fakeCategoryStore{categories: map[uint]*Category{
		1: {ID: 1, Name: "Electronics"},
	}}
	resolver := NewHierarchyResolver(store, 50)

	chain, err := resolver.Ancestors(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestAncestorsMissingParentEndsWalk(t *testing.T) {
	// Category 4 points at a parent that no longer exists; the partial
	// chain is still usable.
	store := &fakeCategoryStore{categories: map[uint]*Category{
		4:  {ID: 4, Name: "Computers", ParentID: parent(99)},
		10: {ID: 10, Name: "Laptops", ParentID: parent(4)},
	}}
	resolver := NewHierarchyResolver(store, 50)

	chain, err := resolver.Ancestors(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 99}, chain)
}

func TestAncestorsDetectsCycle(t *testing.T) {
	store := &fakeCategoryStore{categories: map[uint]*Category{
		1: {ID: 1, ParentID: parent(2)},
		2: {ID: 2, ParentID: parent(1)},
	}}
	resolver := NewHierarchyResolver(store, 50)

	_, err := resolver.Ancestors(context.Background(), 1)
	assert.True(t, apperrors.IsDataIntegrity(err))
}

func TestAncestorsDepthLimit(t *testing.T) {
	categories := make(map[uint]*Category)
	for id := uint(1); id <= 20; id++ {
		c := &Category{ID: id}
		if id > 1 {
			c.ParentID = parent(id - 1)
		}
		categories[id] = c
	}
	store := &fakeCategoryStore{categories: categories}

	resolver := NewHierarchyResolver(store, 5)
	_, err := resolver.Ancestors(context.Background(), 20)
	assert.True(t, apperrors.IsDataIntegrity(err))

	resolver = NewHierarchyResolver(store, 50)
	chain, err := resolver.Ancestors(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, chain, 19)
}

func TestAncestorsStoreError(t *testing.T) {
	store := &fakeCategoryStore{err: errors.New("connection refused")}
	resolver := NewHierarchyResolver(store, 50)

	_, err := resolver.Ancestors(context.Background(), 1)
	assert.True(t, apperrors.IsDependency(err))
}
