package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"go-lead-crm/internal/domain"
)

// setupTestDB 每个用例一个内存 SQLite
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&domain.User{}, &domain.Lead{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestUserRepo_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()

	u := &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"}
	require.NoError(t, r.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	got, err = r.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ann@example.com", got.Email)
}

func TestUserRepo_NotFoundIsNil(t *testing.T) {
	db := setupTestDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()

	got, err := r.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "h"}))
	err := r.Create(ctx, &domain.User{ID: "u2", Name: "Another", Email: "ann@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	// 第一条记录不受影响
	got, err := r.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.Name)
}
