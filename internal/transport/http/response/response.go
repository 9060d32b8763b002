package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-lead-crm/internal/service"
)

// Fail 统一错误出口：业务错误按自带状态码返回 {message}（校验错误附 errors 列表），
// 其余一律 500，细节只进日志不出站
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		if se.Code >= http.StatusInternalServerError {
			l.Error("request failed",
				zap.String("rid", c.GetString("X-Request-ID")),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.JSON(se.Code, gin.H{"message": "Internal server error"})
			return
		}
		if len(se.Fields) > 0 {
			c.JSON(se.Code, gin.H{"message": se.Msg, "errors": se.Fields})
			return
		}
		c.JSON(se.Code, gin.H{"message": se.Msg})
		return
	}

	l.Error("unexpected error",
		zap.String("rid", c.GetString("X-Request-ID")),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
