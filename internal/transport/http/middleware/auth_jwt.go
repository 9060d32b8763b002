package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-lead-crm/internal/core/auth"
)

// KeyUserID 鉴权通过后当前用户 id 在 gin context 中的键
const KeyUserID = "userId"

// AuthJWT 校验 Bearer access token，把 userId 写入 context
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing token"})
			return
		}
		claims, err := j.ParseAccess(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Next()
	}
}
