package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/utils"
)

// Recovery panic 时返回统一的 500 响应。需注册在 Logger 和 Metrics 之后，
// 这样被恢复的请求仍会被记录和计数。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.Error(c, apperr.Unexpected(fmt.Errorf("panic: %v", recovered)))
	})
}
