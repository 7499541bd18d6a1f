package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

// Columns the listing may sort by. Anything else is rejected before the
// query is composed.
var sortColumns = map[string]struct{}{
	"id":    {},
	"name":  {},
	"price": {},
}

var filterOperators = map[string]struct{}{
	"<": {}, "<=": {}, ">": {}, ">=": {},
}

// ErrInvalidListing indicates listing arguments outside the allowed set.
var ErrInvalidListing = errors.New("inventory: invalid listing arguments")

// ListQuery describes a product listing request.
type ListQuery struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
	Price     *PriceFilter
}

func (q ListQuery) validate() error {
	if q.Page < 1 || q.Size < 1 {
		return ErrInvalidListing
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		return ErrInvalidListing
	}
	if q.SortOrder != "ASC" && q.SortOrder != "DESC" {
		return ErrInvalidListing
	}
	if q.Price != nil {
		if _, ok := filterOperators[q.Price.Operator]; !ok {
			return ErrInvalidListing
		}
	}
	return nil
}

// Repository persists the product and supplier catalog in SQLite.
type Repository struct {
	conn *sql.DB
}

// NewRepository constructs a Repository.
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{conn: conn}
}

// Count returns how many products match the filter.
func (r *Repository) Count(ctx context.Context, filter *PriceFilter) (int, error) {
	query := `SELECT COUNT(id) FROM products`
	var args []any
	if filter != nil {
		if _, ok := filterOperators[filter.Operator]; !ok {
			return 0, ErrInvalidListing
		}
		query += fmt.Sprintf(" WHERE price %s ?", filter.Operator)
		args = append(args, filter.Value)
	}

	var count int
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("inventory: count: %w", err)
	}
	return count, nil
}

// List returns one page of products joined with their suppliers.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Product, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	var where string
	var args []any
	if q.Price != nil {
		where = fmt.Sprintf("WHERE t0.price %s ?", q.Price.Operator)
		args = append(args, q.Price.Value)
	}
	// Sort column and order are validated against closed sets above.
	query := fmt.Sprintf(`
		SELECT t0.id, t0.name, t0.price, t1.id, t1.name
		FROM products t0
		JOIN suppliers t1 ON t0.supplier_id = t1.id
		%s
		ORDER BY t0.%s %s
		LIMIT ? OFFSET ?`, where, q.SortBy, q.SortOrder)
	args = append(args, q.Size, (q.Page-1)*q.Size)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var price float64
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Supplier.ID, &p.Supplier.Name); err != nil {
			return nil, fmt.Errorf("inventory: scan product: %w", err)
		}
		p.Price = FormatPrice(price)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	return products, nil
}

// GetByID fetches one product with its supplier.
func (r *Repository) GetByID(ctx context.Context, id int64) (Product, error) {
	const query = `
		SELECT t0.id, t0.name, t0.price, t1.id, t1.name
		FROM products t0
		JOIN suppliers t1 ON t0.supplier_id = t1.id
		WHERE t0.id = ?`

	var p Product
	var price float64
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &price, &p.Supplier.ID, &p.Supplier.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, fmt.Errorf("inventory: get by id: %w", err)
	}
	p.Price = FormatPrice(price)
	return p, nil
}

// Insert adds one product and returns its ID.
func (r *Repository) Insert(ctx context.Context, input ProductInput) (int64, error) {
	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO products (flavor, name, price, image, supplier_id) VALUES (?, ?, ?, ?, ?)`,
		input.Flavor, input.Name, input.Price, input.Image, input.SupplierID)
	if err != nil {
		return 0, fmt.Errorf("inventory: insert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inventory: insert: %w", err)
	}
	return id, nil
}

// InsertBatch adds many products inside one transaction.
func (r *Repository) InsertBatch(ctx context.Context, inputs []ProductInput) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("inventory: insert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (flavor, name, price, image, supplier_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("inventory: insert batch: %w", err)
	}
	defer stmt.Close()

	for _, input := range inputs {
		if _, err := stmt.ExecContext(ctx, input.Flavor, input.Name, input.Price, input.Image, input.SupplierID); err != nil {
			return fmt.Errorf("inventory: insert batch: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateByID applies a partial update. Missing row yields ErrNotFound.
func (r *Repository) UpdateByID(ctx context.Context, id int64, patch ProductPatch) error {
	var setters []string
	var args []any
	if patch.Name != nil {
		setters = append(setters, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Price != nil {
		setters = append(setters, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.SupplierID != nil {
		setters = append(setters, "supplier_id = ?")
		args = append(args, *patch.SupplierID)
	}
	if len(setters) == 0 {
		return nil
	}
	args = append(args, id)

	result, err := r.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE products SET %s WHERE id = ?`, strings.Join(setters, ", ")), args...)
	if err != nil {
		return fmt.Errorf("inventory: update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inventory: update: %w", err)
	}
	if affected == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DeleteByID removes one product. Missing row yields ErrNotFound.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("inventory: delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inventory: delete: %w", err)
	}
	if affected == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ListSuppliers returns every supplier.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT id, name FROM suppliers`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("inventory: scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory: list suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplierByID fetches one supplier.
func (r *Repository) GetSupplierByID(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.conn.QueryRowContext(ctx, `SELECT id, name FROM suppliers WHERE id = ?`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Supplier{}, httpx.ErrNotFound
		}
		return Supplier{}, fmt.Errorf("inventory: get supplier: %w", err)
	}
	return s, nil
}
