package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

type memoryStore struct {
	users map[string]User
}

func newMemoryStore(seed ...User) *memoryStore {
	store := &memoryStore{users: make(map[string]User)}
	for _, u := range seed {
		store.users[u.Email] = u
	}
	return store
}

func (s *memoryStore) GetByEmail(ctx context.Context, email string) (User, error) {
	user, ok := s.users[email]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return user, nil
}

func (s *memoryStore) SetSystemTokens(ctx context.Context, email string, tokens permission.TokenSet) error {
	user, ok := s.users[email]
	if !ok {
		return httpx.ErrNotFound
	}
	user.SystemTokens = tokens
	s.users[email] = user
	return nil
}

func TestToggleAdminModeGrantsFullBundle(t *testing.T) {
	store := newMemoryStore(User{ID: 1, Email: "user@shop.test", SystemTokens: permission.NewTokenSet()})
	service := NewService(store, permission.DefaultVocabulary())

	nowAdmin, err := service.ToggleAdminMode(context.Background(), "user@shop.test")
	require.NoError(t, err)
	require.True(t, nowAdmin)

	user, _ := store.GetByEmail(context.Background(), "user@shop.test")
	require.True(t, user.SystemTokens.Equal(permission.DefaultVocabulary().AdminBundle()))
}

func TestToggleAdminModeTwiceRestoresOriginalSet(t *testing.T) {
	cases := map[string]permission.TokenSet{
		"from empty":  permission.NewTokenSet(),
		"from bundle": permission.DefaultVocabulary().AdminBundle(),
	}
	for name, original := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemoryStore(User{ID: 1, Email: "user@shop.test", SystemTokens: original})
			service := NewService(store, permission.DefaultVocabulary())

			first, err := service.ToggleAdminMode(context.Background(), "user@shop.test")
			require.NoError(t, err)
			second, err := service.ToggleAdminMode(context.Background(), "user@shop.test")
			require.NoError(t, err)
			require.Equal(t, first, !second)

			user, _ := store.GetByEmail(context.Background(), "user@shop.test")
			require.True(t, user.SystemTokens.Equal(original),
				"double toggle must restore the set exactly, no duplicates or drops")
		})
	}
}

func TestToggleAdminModeRevokesBundle(t *testing.T) {
	vocab := permission.DefaultVocabulary()
	store := newMemoryStore(User{ID: 1, Email: "admin@shop.test", SystemTokens: vocab.AdminBundle()})
	service := NewService(store, vocab)

	nowAdmin, err := service.ToggleAdminMode(context.Background(), "admin@shop.test")
	require.NoError(t, err)
	require.False(t, nowAdmin)

	user, _ := store.GetByEmail(context.Background(), "admin@shop.test")
	require.Equal(t, 0, user.SystemTokens.Len())
}

func TestToggleAdminModeUnknownUser(t *testing.T) {
	service := NewService(newMemoryStore(), permission.DefaultVocabulary())

	_, err := service.ToggleAdminMode(context.Background(), "ghost@shop.test")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
