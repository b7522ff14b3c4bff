package shared

import (
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/i18n"
	"github.com/dujiao-next/promo/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := response.RequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, key, i18n.T(i18n.ResolveLocale(c), key), err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// ReasonMessages 将不满足条件的原因码转换为当前语言的提示文案。
func ReasonMessages(c *gin.Context, reasons []string) []string {
	locale := i18n.ResolveLocale(c)
	messages := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		messages = append(messages, i18n.Reason(locale, reason))
	}
	return messages
}

// RespondEvaluation 返回判定结果与本地化原因
func RespondEvaluation(c *gin.Context, outcome interface{}, reasons []string) {
	response.Evaluation(c, response.NewEvaluationPayload(outcome, reasons, ReasonMessages(c, reasons)))
}

// RespondRejected 返回资格复核未通过的 422 响应
func RespondRejected(c *gin.Context, key string, outcome interface{}, reasons []string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Rejected(c, msg, response.NewEvaluationPayload(outcome, reasons, ReasonMessages(c, reasons)))
}
