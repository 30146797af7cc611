package postgres

import (
	"context"
	"errors"
	"fmt"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const schoolColumns = `id, code, name, city, address, pos_user_id, created_at`

// SchoolRepo implements ports.SchoolRepository. The directory is
// read-only from the application's point of view; schools and
// affiliations are administered out of band.
type SchoolRepo struct {
	pool Pool
}

// NewSchoolRepo creates a new SchoolRepo.
func NewSchoolRepo(pool Pool) *SchoolRepo {
	return &SchoolRepo{pool: pool}
}

func scanSchool(row pgx.Row) (*domain.School, error) {
	s := &domain.School{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.City, &s.Address, &s.PosUserID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID fetches a school by ID.
func (r *SchoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`

	s, err := scanSchool(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school by id: %w", err)
	}
	return s, nil
}

// GetByCode fetches a school by its unique code.
func (r *SchoolRepo) GetByCode(ctx context.Context, code string) (*domain.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE code = $1`

	s, err := scanSchool(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school by code: %w", err)
	}
	return s, nil
}

// ListByIDs fetches schools by their IDs.
func (r *SchoolRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list schools by ids: %w", err)
	}
	defer rows.Close()

	var schools []domain.School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan school: %w", err)
		}
		schools = append(schools, *s)
	}
	return schools, rows.Err()
}

// IsAffiliated reports whether the user is enrolled at the school.
func (r *SchoolRepo) IsAffiliated(ctx context.Context, userID, schoolID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM student_schools WHERE user_id = $1 AND school_id = $2)`

	var linked bool
	if err := r.pool.QueryRow(ctx, query, userID, schoolID).Scan(&linked); err != nil {
		return false, fmt.Errorf("check affiliation: %w", err)
	}
	return linked, nil
}
