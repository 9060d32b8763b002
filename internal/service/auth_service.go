package service

import (
	"context"
	"errors"

	"go-lead-crm/internal/core/auth"
	"go-lead-crm/internal/domain"
	"go-lead-crm/pkg/utils"
)

// dummyHash 查无此人时也跑一次 bcrypt 比较，拉平响应时间，
// 避免通过耗时差枚举邮箱
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type TokenPair struct {
	Access  string
	Refresh string
}

type AuthService struct {
	users domain.CredentialStore
	jwter *auth.JWTer
}

func NewAuthService(users domain.CredentialStore, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwter: jwter}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, TokenPair, error) {
	if name == "" || email == "" || password == "" {
		return nil, TokenPair{}, BadRequest("Please provide all fields")
	}

	// 先查一次给出友好错误；真正的并发保障是 email 唯一索引
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, Internal("lookup user failed", err)
	}
	if existing != nil {
		return nil, TokenPair{}, BadRequest("User already exists")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, Internal("hash password failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, TokenPair{}, BadRequest("User already exists")
		}
		return nil, TokenPair{}, Internal("create user failed", err)
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	if email == "" || password == "" {
		return nil, TokenPair{}, BadRequest("Please provide email and password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, Internal("lookup user failed", err)
	}

	hash := dummyHash
	if u != nil {
		hash = u.PasswordHash
	}
	// 无论用户是否存在都比较一次；错误形态不区分“查无此人”和“密码不对”
	if !utils.CheckPassword(password, hash) || u == nil {
		return nil, TokenPair{}, Unauthorized("Invalid credentials")
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh 用刷新令牌换新 access token。刷新令牌本身不轮换。
// 没有服务端会话表，用户被删只能在这里（重新查库）兜住。
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", Unauthorized("Invalid refresh token")
	}
	claims, err := s.jwter.ParseRefresh(refreshToken)
	if err != nil {
		return "", Unauthorized("Invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		return "", Internal("lookup user failed", err)
	}
	if u == nil {
		return "", Unauthorized("Invalid refresh token")
	}
	access, err := s.jwter.IssueAccess(u.ID)
	if err != nil {
		return "", Internal("issue token failed", err)
	}
	return access, nil
}

func (s *AuthService) issuePair(uid string) (TokenPair, error) {
	access, err := s.jwter.IssueAccess(uid)
	if err != nil {
		return TokenPair{}, Internal("issue token failed", err)
	}
	refresh, err := s.jwter.IssueRefresh(uid)
	if err != nil {
		return TokenPair{}, Internal("issue token failed", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
