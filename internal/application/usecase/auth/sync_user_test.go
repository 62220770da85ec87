package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/learnerhub/pkg/auth"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type fakeDirectory struct {
	known     map[string]bool
	created   []NewUser
	lookupErr error
	createErr error
	lookups   int
}

func (f *fakeDirectory) ExistsByKeycloakID(_ context.Context, id string) (bool, error) {
	f.lookups++
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return f.known[id], nil
}

func (f *fakeDirectory) CreateUser(_ context.Context, u NewUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, u)
	f.known[u.KeycloakID] = true
	return nil
}

type mapCache map[string]bool

func (m mapCache) IsSynced(_ context.Context, s string) (bool, error) { return m[s], nil }
func (m mapCache) MarkSynced(_ context.Context, s string, _ time.Duration) error {
	m[s] = true
	return nil
}

func claimsFor(sub, email, username string) *auth.IdentityClaims {
	return &auth.IdentityClaims{
		Email:             email,
		PreferredUsername: username,
		RegisteredClaims:  jwt.RegisteredClaims{Subject: sub},
	}
}

func TestSyncCreatesMissingProfileOnce(t *testing.T) {
	dir := &fakeDirectory{known: map[string]bool{}}
	cache := mapCache{}
	uc := NewSyncUserUseCase(dir, cache, time.Minute, logger.NewNop())

	require.NoError(t, uc.Execute(context.Background(), claimsFor("kc-1", "alice@x.com", "alice")))
	require.NoError(t, uc.Execute(context.Background(), claimsFor("kc-1", "alice@x.com", "alice")))

	require.Len(t, dir.created, 1)
	assert.Equal(t, NewUser{Email: "alice@x.com", Username: "alice", KeycloakID: "kc-1"}, dir.created[0])
	assert.Equal(t, 1, dir.lookups)
	assert.True(t, cache["kc-1"])
}

func TestSyncExistingProfileIsNotRecreated(t *testing.T) {
	dir := &fakeDirectory{known: map[string]bool{"kc-2": true}}
	uc := NewSyncUserUseCase(dir, nil, time.Minute, logger.NewNop())

	require.NoError(t, uc.Execute(context.Background(), claimsFor("kc-2", "b@x.com", "bob")))
	assert.Empty(t, dir.created)
}

func TestSyncErrorsAreReturnedAndNotCached(t *testing.T) {
	dir := &fakeDirectory{known: map[string]bool{}, createErr: errors.New("user service down")}
	cache := mapCache{}
	uc := NewSyncUserUseCase(dir, cache, time.Minute, logger.NewNop())

	err := uc.Execute(context.Background(), claimsFor("kc-3", "c@x.com", "carol"))
	assert.ErrorContains(t, err, "user service down")
	assert.False(t, cache["kc-3"])
}

func TestUsernameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "dave", usernameFor(claimsFor("s", "dave@x.com", "")))
	assert.Equal(t, "erin", usernameFor(claimsFor("s", "e@x.com", " erin ")))
}
