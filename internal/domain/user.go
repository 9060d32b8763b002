package domain

import (
	"context"
	"errors"
	"time"
)

// ErrEmailTaken 由存储层在唯一索引冲突时返回
var ErrEmailTaken = errors.New("email already taken")

type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// CredentialStore 用户凭证存储。
// 邮箱查不到返回 (nil, nil)；email 唯一索引是防并发重复注册的最终保障。
type CredentialStore interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
