package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

// SaleRepository manages carts or orders together with their items.
type SaleRepository interface {
	Kind() domain.SaleKind
	Create(ctx context.Context, sale *domain.Sale) error
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]domain.Sale, error)
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, item *domain.SaleItem) error
	GetItem(ctx context.Context, id string) (*domain.SaleItem, error)
	ListItems(ctx context.Context, saleID string) ([]domain.SaleItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// SaleFilter narrows a sale listing. Zero values mean no restriction.
type SaleFilter struct {
	SalesStaffID  string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

type saleTables struct {
	sales     string
	items     string
	parentCol string
}

var saleTableNames = map[domain.SaleKind]saleTables{
	domain.SaleCart:  {sales: "carts", items: "cart_items", parentCol: "cart_id"},
	domain.SaleOrder: {sales: "orders", items: "order_items", parentCol: "order_id"},
}

type saleRepository struct {
	db     *sql.DB
	kind   domain.SaleKind
	tables saleTables
}

// NewSaleRepository returns a Postgres-backed repository for the given sale kind.
func NewSaleRepository(db *sql.DB, kind domain.SaleKind) SaleRepository {
	tables, ok := saleTableNames[kind]
	if !ok {
		panic(fmt.Sprintf("unknown sale kind %q", kind))
	}
	return &saleRepository{db: db, kind: kind, tables: tables}
}

func (r *saleRepository) Kind() domain.SaleKind {
	return r.kind
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (sales_staff_id, total_price)
        VALUES ($1,$2)
        RETURNING id, created_at`, r.tables.sales)
	sale.Kind = r.kind
	err := r.db.QueryRowContext(ctx, query, sale.SalesStaffID, sale.TotalPrice).Scan(&sale.ID, &sale.CreatedAt)
	return mapSQLError(err)
}

func (r *saleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT id, sales_staff_id, total_price, created_at FROM %s WHERE id=$1`, r.tables.sales)
	sale := domain.Sale{Kind: r.kind}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sale.ID, &sale.SalesStaffID, &sale.TotalPrice, &sale.CreatedAt)
	if err != nil {
		return nil, mapSQLError(err)
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]domain.Sale, error) {
	query := fmt.Sprintf(`SELECT id, sales_staff_id, total_price, created_at FROM %s WHERE 1=1`, r.tables.sales)
	args := []any{}

	if filter.SalesStaffID != "" {
		args = append(args, filter.SalesStaffID)
		query += fmt.Sprintf(" AND sales_staff_id=$%d", len(args))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Sale
	for rows.Next() {
		sale := domain.Sale{Kind: r.kind}
		if err := rows.Scan(&sale.ID, &sale.SalesStaffID, &sale.TotalPrice, &sale.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, sale)
	}
	return result, rows.Err()
}

func (r *saleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, r.tables.sales), id)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}

func (r *saleRepository) AddItem(ctx context.Context, item *domain.SaleItem) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (%s, medication_id, quantity, price)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`, r.tables.items, r.tables.parentCol)
	err := r.db.QueryRowContext(ctx, query, item.SaleID, item.MedicationID, item.Quantity, item.Price).
		Scan(&item.ID, &item.CreatedAt)
	return mapSQLError(err)
}

func (r *saleRepository) GetItem(ctx context.Context, id string) (*domain.SaleItem, error) {
	query := fmt.Sprintf(`SELECT id, %s, medication_id, quantity, price, created_at FROM %s WHERE id=$1`,
		r.tables.parentCol, r.tables.items)
	var item domain.SaleItem
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.SaleID, &item.MedicationID, &item.Quantity, &item.Price, &item.CreatedAt)
	if err != nil {
		return nil, mapSQLError(err)
	}
	return &item, nil
}

func (r *saleRepository) ListItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	query := fmt.Sprintf(`
        SELECT id, %[1]s, medication_id, quantity, price, created_at
        FROM %[2]s WHERE %[1]s=$1 ORDER BY created_at`, r.tables.parentCol, r.tables.items)
	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SaleItem
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.MedicationID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *saleRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, r.tables.items), id)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}
