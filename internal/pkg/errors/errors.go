package errors

import (
	"errors"
	"fmt"
)

// 錯誤碼
const (
	CodeConfig      = "ConfigError"
	CodeMessage     = "MessageError"
	CodePermission  = "PermissionError"
	CodePin         = "PinError"
	CodeRender      = "RenderError"
	CodeBatch       = "BatchError"
	CodeTaskPanic   = "TaskPanic"
	CodeStore       = "StoreError"
	CodeInvalidSeed = "SeedError"
)

// 預定義錯誤類型
var (
	// 配置相關
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")

	// 消息相關
	ErrMessageNotFound = errors.New("chat message not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyPinned   = errors.New("message is already pinned")
	ErrNotPinned       = errors.New("message is not pinned")

	// 權限相關
	ErrPermissionDenied = errors.New("permission denied")

	// 日誌視圖相關
	ErrInvalidBatchSize = errors.New("batch size must be positive")
	ErrRenderFailed     = errors.New("failed to render message")
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf 返回錯誤鏈中最外層自定義錯誤的錯誤碼
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
