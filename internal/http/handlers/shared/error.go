package shared

import (
	"errors"

	"github.com/tezgo/ops-backend/internal/http/response"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 按服务层错误分类返回响应：
// 校验错误 400、状态冲突 409、未找到 404，其余一律 500。
func RespondServiceError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrStateConflict):
		RespondError(c, response.CodeConflict, err.Error(), nil)
	case errors.Is(err, service.ErrCampaignNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPromoNotFound):
		RespondError(c, response.CodeNotFound, err.Error(), nil)
	default:
		RespondError(c, response.CodeInternal, fallbackMsg, err)
	}
}
