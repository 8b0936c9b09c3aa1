package service

import (
	"context"
	"sync"
	"testing"

	"BotDesk/internal/modules/admin/application/dto/request"
	"BotDesk/internal/modules/admin/domain/entity"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAdmins struct {
	mu    sync.Mutex
	users map[string]*entity.AdminUser
}

func newMemAdmins() *memAdmins {
	return &memAdmins{users: map[string]*entity.AdminUser{}}
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*entity.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAdmins) GetByID(_ context.Context, id string) (*entity.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memAdmins) Create(_ context.Context, u *entity.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Id] = u
	return nil
}

func (m *memAdmins) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Password = hash
	return nil
}

var testJWT = myjwt.Options{Key: "test-key", ExpireHours: 1, Issuer: "BotDesk"}

func TestBootstrapAndLogin(t *testing.T) {
	repo := newMemAdmins()
	svc := NewAuthService(repo, testJWT)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, " Root@BN9.local ", "secret"))
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "root@bn9.local", "changed"))
	assert.Len(t, repo.users, 1)

	out, err := svc.Login(ctx, request.LoginRequest{Email: "root@bn9.local", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "root@bn9.local", out.User.Email)

	claims, err := myjwt.ParseToken(testJWT, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.AdminID)

	me, err := svc.Me(ctx, claims.AdminID)
	require.NoError(t, err)
	assert.Equal(t, "root@bn9.local", me.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMemAdmins()
	svc := NewAuthService(repo, testJWT)
	ctx := context.Background()
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "a@b.co", "pw"))

	_, err := svc.Login(ctx, request.LoginRequest{Email: "a@b.co", Password: "wrong"})
	assert.ErrorIs(t, err, xerr.ErrInvalidCredential)
	_, err = svc.Login(ctx, request.LoginRequest{Email: "nobody@b.co", Password: "pw"})
	assert.ErrorIs(t, err, xerr.ErrInvalidCredential)
}

func TestBootstrap_SkipsWhenUnset(t *testing.T) {
	repo := newMemAdmins()
	require.NoError(t, NewAuthService(repo, testJWT).EnsureBootstrapAdmin(context.Background(), "a@b.co", ""))
	assert.Empty(t, repo.users)
}

func TestMe_Unknown(t *testing.T) {
	_, err := NewAuthService(newMemAdmins(), testJWT).Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, xerr.ErrUnauthorized)
}

func TestResetPassword(t *testing.T) {
	repo := newMemAdmins()
	svc := NewAuthService(repo, testJWT)
	ctx := context.Background()
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "a@b.co", "old"))

	require.NoError(t, svc.ResetPassword(ctx, "A@B.co", "new"))
	_, err := svc.Login(ctx, request.LoginRequest{Email: "a@b.co", Password: "old"})
	assert.ErrorIs(t, err, xerr.ErrInvalidCredential)
	_, err = svc.Login(ctx, request.LoginRequest{Email: "a@b.co", Password: "new"})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "ghost@b.co", "x"), xerr.ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@b.co", ""), xerr.ErrParam)
}
