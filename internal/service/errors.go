package service

import (
	"errors"
	"fmt"
)

// 错误分类哨兵：handler 通过 errors.Is 映射响应码。
var (
	ErrValidation       = errors.New("validation failed")
	ErrStateConflict    = errors.New("state conflict")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPromoNotFound    = errors.New("promo code not found")
)

// ValidationError 输入校验失败，携带单一原因描述
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is 归类为 ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StateConflictError 状态冲突（刷新后可重试），区别于表单校验失败
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return e.Reason
}

// Is 归类为 ErrStateConflict
func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}

func stateConflictf(format string, args ...interface{}) error {
	return &StateConflictError{Reason: fmt.Sprintf(format, args...)}
}
