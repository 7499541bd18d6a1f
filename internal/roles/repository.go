package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

const tokenSep = "|"

// ErrNoRowsAffected indicates a write that unexpectedly changed nothing.
// Surfaced as an internal error, never distinctly to clients.
var ErrNoRowsAffected = errors.New("roles: write affected no rows")

// Repository persists custom roles and their user assignments in SQLite.
type Repository struct {
	conn *sql.DB
}

// NewRepository constructs a Repository.
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{conn: conn}
}

// List returns every role, most recently created first, with its
// permission set and assigned user emails.
func (r *Repository) List(ctx context.Context) ([]RoleWithAssignees, error) {
	const query = `
		SELECT
			t0.id,
			t0.name,
			t0.permissions,
			COALESCE(GROUP_CONCAT(t2.email), '')
		FROM user_roles t0
		LEFT JOIN applied_user_roles t1
			ON t0.id = t1.user_roles_id
		LEFT JOIN users t2
			ON t1.user_id = t2.id
		GROUP BY t0.id
		ORDER BY t0.id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var result []RoleWithAssignees
	for rows.Next() {
		var role RoleWithAssignees
		var encoded, applied string
		if err := rows.Scan(&role.ID, &role.Name, &encoded, &applied); err != nil {
			return nil, fmt.Errorf("roles: scan role: %w", err)
		}
		role.Permissions = permission.ParseTokenSet(encoded, tokenSep)
		if applied != "" {
			role.AssignedEmails = strings.Split(applied, ",")
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	return result, nil
}

// GetByID fetches one role.
func (r *Repository) GetByID(ctx context.Context, id int64) (Role, error) {
	const query = `SELECT id, name, permissions FROM user_roles WHERE id = ?`

	var role Role
	var encoded string
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.Name, &encoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Role{}, httpx.ErrNotFound
		}
		return Role{}, fmt.Errorf("roles: get by id: %w", err)
	}
	role.Permissions = permission.ParseTokenSet(encoded, tokenSep)
	return role, nil
}

// Create inserts a role with an empty permission set.
func (r *Repository) Create(ctx context.Context, name string) (Role, error) {
	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO user_roles (name) VALUES (?)`, name)
	if err != nil {
		return Role{}, fmt.Errorf("roles: create: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Role{}, fmt.Errorf("roles: create: %w", err)
	}
	return Role{ID: id, Name: name, Permissions: permission.NewTokenSet()}, nil
}

// Update replaces the role's name and permission set wholesale.
func (r *Repository) Update(ctx context.Context, id int64, name string, tokens permission.TokenSet) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE user_roles SET name = ?, permissions = ? WHERE id = ?`,
		name, tokens.Encode(tokenSep), id)
	if err != nil {
		return fmt.Errorf("roles: update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("roles: update: %w", err)
	}
	if affected == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// IsAssigned reports whether the (user, role) assignment row exists.
func (r *Repository) IsAssigned(ctx context.Context, userID, roleID int64) (bool, error) {
	const query = `
		SELECT id FROM applied_user_roles
		WHERE user_roles_id = ? AND user_id = ?`

	var id int64
	err := r.conn.QueryRowContext(ctx, query, roleID, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("roles: is assigned: %w", err)
	}
	return true, nil
}

// ToggleAssignment flips the assignment: delete the row when present,
// insert it when absent. Returns whether the role is now assigned.
//
// The read and the inverse write are two statements, not one
// transaction; two concurrent toggles of the same pair may interleave.
// SQLite serialises the individual statements, so the relation stays
// consistent even if the outcome is last-write-wins.
func (r *Repository) ToggleAssignment(ctx context.Context, userID, roleID int64) (bool, error) {
	assigned, err := r.IsAssigned(ctx, userID, roleID)
	if err != nil {
		return false, err
	}

	var result sql.Result
	if assigned {
		result, err = r.conn.ExecContext(ctx,
			`DELETE FROM applied_user_roles WHERE user_roles_id = ? AND user_id = ?`,
			roleID, userID)
	} else {
		result, err = r.conn.ExecContext(ctx,
			`INSERT INTO applied_user_roles (user_roles_id, user_id) VALUES (?, ?)`,
			roleID, userID)
	}
	if err != nil {
		return false, fmt.Errorf("roles: toggle assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("roles: toggle assignment: %w", err)
	}
	if affected == 0 {
		return false, ErrNoRowsAffected
	}
	return !assigned, nil
}
