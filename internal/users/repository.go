package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

// The roles column stores the token set pipe-delimited; GROUP_CONCAT
// joins per-role sets with commas. Both are storage encodings only.
const tokenSep = "|"

// Repository persists user accounts in SQLite.
type Repository struct {
	conn *sql.DB
}

// NewRepository constructs a Repository.
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{conn: conn}
}

// GetByEmail fetches a user with its system-token set.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
		SELECT id, email, password, roles
		FROM users
		WHERE email = ?`

	var user User
	var encoded string
	err := r.conn.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &encoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, fmt.Errorf("users: get by email: %w", err)
	}
	user.SystemTokens = permission.ParseTokenSet(encoded, tokenSep)
	return user, nil
}

// GetByEmailWithRoles fetches a user together with the union of
// permission tokens across every custom role currently assigned to it.
func (r *Repository) GetByEmailWithRoles(ctx context.Context, email string) (User, permission.TokenSet, error) {
	const query = `
		SELECT
			t0.id,
			t0.email,
			t0.password,
			t0.roles,
			COALESCE(GROUP_CONCAT(t2.permissions), '')
		FROM users t0
		LEFT JOIN applied_user_roles t1
			ON t1.user_id = t0.id
		LEFT JOIN user_roles t2
			ON t2.id = t1.user_roles_id
		WHERE t0.email = ?
		GROUP BY t0.id`

	var user User
	var systemEncoded, roleEncoded string
	err := r.conn.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &systemEncoded, &roleEncoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, nil, httpx.ErrNotFound
		}
		return User{}, nil, fmt.Errorf("users: get by email with roles: %w", err)
	}
	user.SystemTokens = permission.ParseTokenSet(systemEncoded, tokenSep)
	// GROUP_CONCAT joins the per-role pipe-delimited sets with commas;
	// normalise before decoding.
	roleTokens := permission.ParseTokenSet(strings.ReplaceAll(roleEncoded, ",", tokenSep), tokenSep)
	return user, roleTokens, nil
}

// FindIDByEmail resolves an email to its user ID.
func (r *Repository) FindIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.conn.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, httpx.ErrNotFound
		}
		return 0, fmt.Errorf("users: find id by email: %w", err)
	}
	return id, nil
}

// ListEmails returns every account email.
func (r *Repository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("users: scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list emails: %w", err)
	}
	return emails, nil
}

// SetSystemTokens replaces the user's system-token set wholesale.
func (r *Repository) SetSystemTokens(ctx context.Context, email string, tokens permission.TokenSet) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE users SET roles = ? WHERE email = ?`,
		tokens.Encode(tokenSep), email)
	if err != nil {
		return fmt.Errorf("users: set system tokens: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("users: set system tokens: %w", err)
	}
	if affected == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
