package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	Unprocessable       = 422
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid           = errors.New("参数错误")
	ErrInvalidTransition      = errors.New("非法的状态流转")
	ErrForbidden              = errors.New("权限不足")
	ErrMissingField           = errors.New("缺少必填字段")
	ErrConcurrentModification = errors.New("申请状态已被修改，请刷新后重试")
	ErrDeadlinePassed         = errors.New("申请已截止")
	ErrDuplicateApplication   = errors.New("已申请过该机会")
	ErrApplicationNotFound    = errors.New("申请不存在")
	ErrOpportunityNotFound    = errors.New("机会不存在")
	ErrContentNotFound        = errors.New("内容不存在")
	ErrNotificationNotFound   = errors.New("系统通知不存在")
	ErrToggleFailed           = errors.New("操作失败，已恢复原状态")
	ErrStoreUnavailable       = errors.New("存储服务不可用")
	UnExpectedError           = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:           BadRequest,
	ErrInvalidTransition:      Unprocessable,
	ErrForbidden:              Forbidden,
	ErrMissingField:           BadRequest,
	ErrConcurrentModification: Conflict,
	ErrDeadlinePassed:         Unprocessable,
	ErrDuplicateApplication:   Conflict,
	ErrApplicationNotFound:    NotFound,
	ErrOpportunityNotFound:    NotFound,
	ErrContentNotFound:        NotFound,
	ErrNotificationNotFound:   NotFound,
	ErrToggleFailed:           ServiceUnavailable,
	ErrStoreUnavailable:       ServiceUnavailable,
	UnExpectedError:           InternalServerError,
}

// errorPriority 包装错误可能同时命中多个哨兵，按此顺序取第一个
var errorPriority = []error{
	ErrToggleFailed,
	ErrParamInvalid,
	ErrInvalidTransition,
	ErrForbidden,
	ErrMissingField,
	ErrConcurrentModification,
	ErrDeadlinePassed,
	ErrDuplicateApplication,
	ErrApplicationNotFound,
	ErrOpportunityNotFound,
	ErrContentNotFound,
	ErrNotificationNotFound,
	ErrStoreUnavailable,
	UnExpectedError,
}

// Lookup 返回错误对应的业务码及对外展示的哨兵错误，未登记的错误归为 UnExpectedError
func Lookup(err error) (int, error) {
	if code, ok := ErrorMap[err]; ok {
		return code, err
	}
	for _, target := range errorPriority {
		if errors.Is(err, target) {
			return ErrorMap[target], target
		}
	}
	return InternalServerError, UnExpectedError
}
