package response

import "errors"

// AppError 处理器错误：业务状态码、消息键与本地化消息
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Key
	}
	return e.Key + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误，message 为空时使用消息键
func WrapError(code int, key, message string, err error) *AppError {
	if message == "" {
		message = key
	}
	return &AppError{Code: code, Key: key, Message: message, Err: err}
}

// AsAppError 从错误链中取出 AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
