package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FamilyRepo implements ports.FamilyRepository over the parent_children
// link table.
type FamilyRepo struct {
	pool Pool
}

// NewFamilyRepo creates a new FamilyRepo.
func NewFamilyRepo(pool Pool) *FamilyRepo {
	return &FamilyRepo{pool: pool}
}

// ParentOf returns the parent linked to the child, or nil when the
// child has no link.
func (r *FamilyRepo) ParentOf(ctx context.Context, childID uuid.UUID) (*uuid.UUID, error) {
	query := `SELECT parent_user_id FROM parent_children WHERE child_user_id = $1`

	var parentID uuid.UUID
	err := r.pool.QueryRow(ctx, query, childID).Scan(&parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parent of child: %w", err)
	}
	return &parentID, nil
}

// IsLinked reports whether the parent/child link exists.
func (r *FamilyRepo) IsLinked(ctx context.Context, parentID, childID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM parent_children WHERE parent_user_id = $1 AND child_user_id = $2)`

	var linked bool
	if err := r.pool.QueryRow(ctx, query, parentID, childID).Scan(&linked); err != nil {
		return false, fmt.Errorf("check parent/child link: %w", err)
	}
	return linked, nil
}
