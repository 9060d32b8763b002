package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-lead-crm/internal/domain"
	"go-lead-crm/internal/service"
	"go-lead-crm/internal/transport/http/response"
)

// RefreshCookieName 刷新令牌 cookie 名（与前端约定，固定不变）
const RefreshCookieName = "refreshToken"

// RefreshCookiePath 只在刷新接口所在路径下携带
const RefreshCookiePath = "/api/v1/auth"

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userOut struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserOut(u *domain.User) userOut {
	return userOut{ID: u.ID, Name: u.Name, Email: u.Email}
}

type AuthHandler struct {
	svc          *service.AuthService
	log          *zap.Logger
	refreshTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(svc *service.AuthService, l *zap.Logger, refreshTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, log: l, refreshTTL: refreshTTL, secureCookie: secureCookie}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	u, pair, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	h.setRefreshCookie(c, pair.Refresh)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    toUserOut(u),
	})
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	u, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	h.setRefreshCookie(c, pair.Refresh)
	c.JSON(http.StatusOK, gin.H{
		"token": pair.Access,
		"user":  toUserOut(u),
	})
}

// Refresh POST /auth/refresh-token
// 凭 HTTP-only cookie 里的刷新令牌换新 access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(RefreshCookieName)
	access, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, token, int(h.refreshTTL.Seconds()), RefreshCookiePath, "", h.secureCookie, true)
}
