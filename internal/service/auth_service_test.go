package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lead-crm/internal/core/auth"
	"go-lead-crm/internal/domain"
	"go-lead-crm/pkg/utils"
)

// mockCredentialStore 函数字段式 mock，逐用例覆盖行为
type mockCredentialStore struct {
	CreateFunc      func(ctx context.Context, u *domain.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockCredentialStore) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *mockCredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockCredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func testJWTer() *auth.JWTer {
	return &auth.JWTer{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Issuer:        "lead-crm-test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func svcErrCode(t *testing.T, err error) int {
	t.Helper()
	var se *Error
	require.ErrorAs(t, err, &se)
	return se.Code
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes password and issues both tokens", func(t *testing.T) {
		var saved *domain.User
		store := &mockCredentialStore{
			CreateFunc: func(ctx context.Context, u *domain.User) error {
				saved = u
				return nil
			},
		}
		s := NewAuthService(store, testJWTer())

		u, pair, err := s.Register(ctx, "Ann", "ann@example.com", "password123")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.NotEmpty(t, u.ID)
		assert.NotEqual(t, "password123", saved.PasswordHash)
		assert.True(t, utils.CheckPassword("password123", saved.PasswordHash))
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)

		// access token 里带的就是新用户 id
		claims, err := testJWTer().ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UID)
	})

	t.Run("missing fields", func(t *testing.T) {
		s := NewAuthService(&mockCredentialStore{}, testJWTer())
		_, _, err := s.Register(ctx, "", "ann@example.com", "pw")
		assert.Equal(t, http.StatusBadRequest, svcErrCode(t, err))
	})

	t.Run("duplicate email via pre-check", func(t *testing.T) {
		store := &mockCredentialStore{
			FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
				return &domain.User{ID: "u1", Email: email}, nil
			},
		}
		s := NewAuthService(store, testJWTer())
		_, _, err := s.Register(ctx, "Ann", "ann@example.com", "pw")
		assert.Equal(t, http.StatusBadRequest, svcErrCode(t, err))
		assert.Equal(t, "User already exists", err.Error())
	})

	t.Run("duplicate email via unique index race", func(t *testing.T) {
		store := &mockCredentialStore{
			CreateFunc: func(ctx context.Context, u *domain.User) error {
				return domain.ErrEmailTaken
			},
		}
		s := NewAuthService(store, testJWTer())
		_, _, err := s.Register(ctx, "Ann", "ann@example.com", "pw")
		assert.Equal(t, http.StatusBadRequest, svcErrCode(t, err))
		assert.Equal(t, "User already exists", err.Error())
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	stored := &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		store := &mockCredentialStore{
			FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
				return stored, nil
			},
		}
		s := NewAuthService(store, testJWTer())
		u, pair, err := s.Login(ctx, "ann@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)

		claims, err := testJWTer().ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UID)
	})

	// 密码错 和 查无此人 返回完全一样的错误，不暴露邮箱是否注册过
	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		withUser := &mockCredentialStore{
			FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
				return stored, nil
			},
		}
		withoutUser := &mockCredentialStore{}

		s1 := NewAuthService(withUser, testJWTer())
		_, _, err1 := s1.Login(ctx, "ann@example.com", "wrong-password")

		s2 := NewAuthService(withoutUser, testJWTer())
		_, _, err2 := s2.Login(ctx, "nobody@example.com", "password123")

		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err1))
		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err2))
		assert.Equal(t, err1.Error(), err2.Error())
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	j := testJWTer()

	t.Run("success returns new access token only", func(t *testing.T) {
		store := &mockCredentialStore{
			FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
				return &domain.User{ID: id}, nil
			},
		}
		s := NewAuthService(store, j)

		refresh, err := j.IssueRefresh("u1")
		require.NoError(t, err)

		access, err := s.Refresh(ctx, refresh)
		require.NoError(t, err)

		claims, err := j.ParseAccess(access)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UID)
	})

	t.Run("missing or invalid token", func(t *testing.T) {
		s := NewAuthService(&mockCredentialStore{}, j)

		_, err := s.Refresh(ctx, "")
		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err))

		_, err = s.Refresh(ctx, "garbage")
		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err))
	})

	t.Run("access token cannot be used as refresh token", func(t *testing.T) {
		s := NewAuthService(&mockCredentialStore{}, j)
		access, err := j.IssueAccess("u1")
		require.NoError(t, err)

		_, err = s.Refresh(ctx, access)
		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err))
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		s := NewAuthService(&mockCredentialStore{}, j) // FindByID 默认返回 nil
		refresh, err := j.IssueRefresh("u-gone")
		require.NoError(t, err)

		_, err = s.Refresh(ctx, refresh)
		assert.Equal(t, http.StatusUnauthorized, svcErrCode(t, err))
	})
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()

	// 轻量内存实现，串起完整注册→登录链路
	users := map[string]*domain.User{}
	store := &mockCredentialStore{
		CreateFunc: func(ctx context.Context, u *domain.User) error {
			if _, ok := users[u.Email]; ok {
				return domain.ErrEmailTaken
			}
			users[u.Email] = u
			return nil
		},
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return users[email], nil
		},
	}
	s := NewAuthService(store, testJWTer())

	created, _, err := s.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	u, pair, err := s.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	claims, err := testJWTer().ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UID)

	_, _, err = s.Register(ctx, "Imposter", "ann@example.com", "other")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, svcErrCode(t, err))
}

func TestAuthService_LoginRejectsUnverifiedInternalError(t *testing.T) {
	ctx := context.Background()
	store := &mockCredentialStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, errors.New("db down")
		},
	}
	s := NewAuthService(store, testJWTer())
	_, _, err := s.Login(ctx, "ann@example.com", "pw")
	assert.Equal(t, http.StatusInternalServerError, svcErrCode(t, err))
}
