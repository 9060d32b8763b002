package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTer 签发/校验访问令牌与刷新令牌。
// 两种令牌各用一把密钥、各自 TTL，刷新令牌只用于换新 access token。
type JWTer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (j *JWTer) IssueAccess(uid string) (string, error) {
	return j.issue(uid, j.AccessSecret, j.AccessTTL)
}

func (j *JWTer) IssueRefresh(uid string) (string, error) {
	return j.issue(uid, j.RefreshSecret, j.RefreshTTL)
}

func (j *JWTer) issue(uid string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTer) ParseAccess(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.AccessSecret)
}

func (j *JWTer) ParseRefresh(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.RefreshSecret)
}

func (j *JWTer) parse(tokenStr string, secret []byte) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, ErrInvalidToken
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.UID != "" {
		return c, nil
	}
	return nil, ErrInvalidToken
}
