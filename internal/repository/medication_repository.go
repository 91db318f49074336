package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

// MedicationRepository manages stock items.
type MedicationRepository interface {
	Create(ctx context.Context, med *domain.Medication) error
	Update(ctx context.Context, med *domain.Medication) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Medication, error)
	List(ctx context.Context, limit, offset int) ([]domain.Medication, error)
}

type medicationRepository struct {
	db *sql.DB
}

// NewMedicationRepository returns a Postgres-backed implementation.
func NewMedicationRepository(db *sql.DB) MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, med *domain.Medication) error {
	const query = `
        INSERT INTO medications (name, price, quantity)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, med.Name, med.Price, med.Quantity).
		Scan(&med.ID, &med.CreatedAt, &med.UpdatedAt)
	return mapSQLError(err)
}

func (r *medicationRepository) Update(ctx context.Context, med *domain.Medication) error {
	const query = `
        UPDATE medications SET name=$1, price=$2, quantity=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, med.Name, med.Price, med.Quantity, med.ID).Scan(&med.UpdatedAt)
	return mapSQLError(err)
}

func (r *medicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id=$1`, id)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}

func (r *medicationRepository) GetByID(ctx context.Context, id string) (*domain.Medication, error) {
	const query = `SELECT id, name, price, quantity, created_at, updated_at FROM medications WHERE id=$1`
	var med domain.Medication
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&med.ID, &med.Name, &med.Price, &med.Quantity, &med.CreatedAt, &med.UpdatedAt)
	if err != nil {
		return nil, mapSQLError(err)
	}
	return &med, nil
}

func (r *medicationRepository) List(ctx context.Context, limit, offset int) ([]domain.Medication, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT id, name, price, quantity, created_at, updated_at
        FROM medications ORDER BY name LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Medication
	for rows.Next() {
		var med domain.Medication
		if err := rows.Scan(&med.ID, &med.Name, &med.Price, &med.Quantity, &med.CreatedAt, &med.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, med)
	}
	return result, rows.Err()
}
