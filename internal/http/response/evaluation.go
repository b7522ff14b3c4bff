package response

import "github.com/gin-gonic/gin"

// EvaluationPayload 资格判定结果。reasons 为稳定的原因码，messages 与 reasons 一一对应
type EvaluationPayload struct {
	Outcome   interface{} `json:"outcome"`
	Reasons   []string    `json:"reasons"`
	Messages  []string    `json:"messages"`
	RequestID string      `json:"request_id,omitempty"`
}

// NewEvaluationPayload 组装判定结果，缺失的提示文案以原因码代替
func NewEvaluationPayload(outcome interface{}, reasons, messages []string) *EvaluationPayload {
	codes := make([]string, len(reasons))
	copy(codes, reasons)
	texts := make([]string, len(codes))
	for i, code := range codes {
		if i < len(messages) && messages[i] != "" {
			texts[i] = messages[i]
			continue
		}
		texts[i] = code
	}
	return &EvaluationPayload{Outcome: outcome, Reasons: codes, Messages: texts}
}

// Evaluation 返回判定结果，不满足条件同样视为成功响应
func Evaluation(c *gin.Context, payload *EvaluationPayload) {
	if payload != nil && payload.RequestID == "" {
		payload.RequestID = RequestID(c)
	}
	Success(c, payload)
}

// Rejected 核销时资格复核未通过，返回 422 与原因
func Rejected(c *gin.Context, msg string, payload *EvaluationPayload) {
	ErrorWithData(c, CodeUnprocessable, msg, payload)
}
