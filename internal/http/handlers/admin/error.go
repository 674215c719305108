package admin

import (
	"strconv"

	"github.com/tezgo/ops-backend/internal/constants"
	handlershared "github.com/tezgo/ops-backend/internal/http/handlers/shared"
	"github.com/tezgo/ops-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondServiceError(c, err, fallbackMsg)
}

// requestActor 从网关注入的请求头读取操作者身份，缺省按 operator 记录
func requestActor(c *gin.Context) service.Actor {
	role := c.GetHeader("X-Actor-Role")
	if role == "" {
		role = constants.ActorRoleOperator
	}
	var id uint
	if raw := c.GetHeader("X-Actor-ID"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			id = uint(parsed)
		}
	}
	return service.Actor{Role: role, ID: id}
}

// pathID 解析路径中的数字ID参数
func pathID(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
