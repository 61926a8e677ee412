package model

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen 推薦サービスへの呼び出しがサーキットブレーカーにより拒否された
var ErrCircuitOpen = errors.New("推薦サービスが一時的に利用できません")

// RequestError 推薦サービスが成功以外のステータスを返した
type RequestError struct {
	Operation  string
	StatusCode int
	// Message サーバーが返したメッセージ（無い場合は空）
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Failed to %s with status: %d", e.Operation, e.StatusCode)
}

// MalformedResponseError レスポンスが想定したスキーマに一致しない
type MalformedResponseError struct {
	Operation string
	Err       error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%sのレスポンス形式が不正です: %v", e.Operation, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
