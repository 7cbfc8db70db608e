package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口，使 CodeError 可作为 error 类型使用
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 按业务错误码比较，使同一错误码的不同实例可以通过 errors.Is 命中
// 服务层返回的错误可能被再包装一层，仅比较指针会漏判
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "群组不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "群组 %s 不存在", groupId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// 业务状态码常量定义
const (
	CodeSuccess      = 1000 // 成功
	CodeInvalidParam = 1001 // 请求参数错误
	CodeServerBusy   = 1005 // 服务繁忙
	CodeUnauthorized = 1006 // 未授权/认证失败
	CodeForbidden    = 1007 // 无权执行该操作
	CodeNotFound     = 1008 // 资源不存在
	CodeDBError      = 1010 // 数据库错误
	CodeCacheError   = 1011 // 缓存错误

	// 群组成员与邀请领域错误码
	CodeAlreadyMember     = 1020 // 用户已是群成员
	CodeAlreadyResponded  = 1021 // 邀请已处于终态，不可再响应
	CodeOwnerMustTransfer = 1022 // 群主需先转让才能退出
	CodeNotPublic         = 1023 // 非公开群不允许直接加入
	CodeInviteExpired     = 1024 // 邀请已过期
	CodePendingInvite     = 1025 // 已存在待处理邀请
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam      = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy        = New(CodeServerBusy, "服务繁忙")
	ErrForbidden         = New(CodeForbidden, "无权执行该操作")
	ErrNotFound          = New(CodeNotFound, "资源不存在")
	ErrAlreadyMember     = New(CodeAlreadyMember, "用户已是群成员")
	ErrAlreadyResponded  = New(CodeAlreadyResponded, "邀请已被响应")
	ErrOwnerMustTransfer = New(CodeOwnerMustTransfer, "群主需先转让群主身份")
	ErrNotPublic         = New(CodeNotPublic, "该群不允许直接加入")
	ErrInviteExpired     = New(CodeInviteExpired, "邀请已过期")
	ErrPendingInvite     = New(CodePendingInvite, "已存在待处理邀请")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	// 检查底层错误消息是否包含 "record not found"
	return err != nil && err.Error() == "record not found"
}
