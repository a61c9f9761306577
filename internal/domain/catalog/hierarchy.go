// internal/domain/catalog/hierarchy.go
package catalog

import (
	"context"

	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

// CategoryStore is the lookup surface the resolver needs.
type CategoryStore interface {
	FindCategoryByID(ctx context.Context, id uint) (*Category, error)
}

// HierarchyResolver walks category parent chains. Chains are recomputed
// on every lookup; parent reassignment is rare but must stay consistent.
type HierarchyResolver struct {
	store      CategoryStore
	depthLimit int
}

// NewHierarchyResolver creates a resolver with the given traversal depth cap.
func NewHierarchyResolver(store CategoryStore, depthLimit int) *HierarchyResolver {
	if depthLimit < 1 {
		depthLimit = 50
	}
	return &HierarchyResolver{
		store:      store,
		depthLimit: depthLimit,
	}
}

// Ancestors returns the ancestor category IDs of categoryID, nearest
// parent first, terminating at the root. A missing category anywhere in
// the chain ends the walk with the partial chain collected so far. A
// repeated ID or a chain deeper than the configured cap means the parent
// pointers are corrupted and yields a data-integrity error.
func (r *HierarchyResolver) Ancestors(ctx context.Context, categoryID uint) ([]uint, error) {
	ancestors := []uint{}
	seen := map[uint]bool{categoryID: true}
	currentID := categoryID

	for depth := 0; depth < r.depthLimit; depth++ {
		category, err := r.store.FindCategoryByID(ctx, currentID)
		if err != nil {
			return nil, apperrors.Dependency("failed to load category", err)
		}
		if category == nil || category.ParentID == nil {
			return ancestors, nil
		}

		parentID := *category.ParentID
		if seen[parentID] {
			return nil, apperrors.DataIntegrity("cyclic category parent chain at category %d", parentID)
		}
		seen[parentID] = true

		ancestors = append(ancestors, parentID)
		currentID = parentID
	}

	return nil, apperrors.DataIntegrity("category parent chain exceeds depth limit %d", r.depthLimit)
}
