package roles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/db"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), conn))
	return conn
}

func seedUser(t *testing.T, conn *sql.DB, email string) int64 {
	t.Helper()
	result, err := conn.Exec(`INSERT INTO users (email, password, roles) VALUES (?, 'x', '')`, email)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestCreateStartsWithEmptyPermissionSet(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	role, err := repo.Create(context.Background(), "Editor")
	require.NoError(t, err)
	require.Equal(t, "Editor", role.Name)
	require.Equal(t, 0, role.Permissions.Len())

	loaded, err := repo.GetByID(context.Background(), role.ID)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Permissions.Len())
}

func TestUpdateReplacesPermissionSetWholesale(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	role, err := repo.Create(context.Background(), "Editor")
	require.NoError(t, err)

	first := permission.NewTokenSet(permission.RoleProductRead, permission.RoleProductUpdate)
	require.NoError(t, repo.Update(context.Background(), role.ID, "Editor", first))

	second := permission.NewTokenSet(permission.RoleProductDelete)
	require.NoError(t, repo.Update(context.Background(), role.ID, "Remover", second))

	loaded, err := repo.GetByID(context.Background(), role.ID)
	require.NoError(t, err)
	require.Equal(t, "Remover", loaded.Name)
	require.True(t, loaded.Permissions.Equal(second), "old tokens must not linger")
}

func TestUpdateUnknownRole(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	err := repo.Update(context.Background(), 999, "Ghost", permission.NewTokenSet())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestToggleAssignmentPairRestoresState(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	userID := seedUser(t, conn, "user@shop.test")
	role, err := repo.Create(context.Background(), "Editor")
	require.NoError(t, err)

	assigned, err := repo.IsAssigned(context.Background(), userID, role.ID)
	require.NoError(t, err)
	require.False(t, assigned)

	first, err := repo.ToggleAssignment(context.Background(), userID, role.ID)
	require.NoError(t, err)
	require.True(t, first)

	assigned, err = repo.IsAssigned(context.Background(), userID, role.ID)
	require.NoError(t, err)
	require.True(t, assigned)

	second, err := repo.ToggleAssignment(context.Background(), userID, role.ID)
	require.NoError(t, err)
	require.False(t, second)
	require.Equal(t, first, !second, "each toggle's result is the negation of the other's")

	assigned, err = repo.IsAssigned(context.Background(), userID, role.ID)
	require.NoError(t, err)
	require.False(t, assigned, "double toggle leaves the relation unchanged")
}

func TestListNewestFirstWithAssignees(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	alice := seedUser(t, conn, "alice@shop.test")
	bob := seedUser(t, conn, "bob@shop.test")

	editor, err := repo.Create(context.Background(), "Editor")
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), editor.ID, "Editor",
		permission.NewTokenSet(permission.RoleProductUpdate)))
	viewer, err := repo.Create(context.Background(), "Viewer")
	require.NoError(t, err)

	_, err = repo.ToggleAssignment(context.Background(), alice, editor.ID)
	require.NoError(t, err)
	_, err = repo.ToggleAssignment(context.Background(), bob, editor.ID)
	require.NoError(t, err)

	listed, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)

	require.Equal(t, viewer.ID, listed[0].ID, "most recently created role first")
	require.Empty(t, listed[0].AssignedEmails)

	require.Equal(t, editor.ID, listed[1].ID)
	require.ElementsMatch(t, []string{"alice@shop.test", "bob@shop.test"}, listed[1].AssignedEmails)
	require.True(t, listed[1].Permissions.Has(permission.RoleProductUpdate))
}
