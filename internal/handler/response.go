// Package handler HTTP 请求处理层
// 只做参数绑定、操作者提取和响应包装，业务规则全部在 service 层
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memora_group_server/pkg/errorx"
)

// Response 统一响应结构
type Response struct {
	Code int    `json:"code"` // 业务状态码
	Msg  string `json:"msg"`  // 提示消息
	Data any    `json:"data,omitempty"`
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 返回业务错误响应
// 领域错误原样透出业务码和消息，底层存储错误统一收敛为"服务繁忙"
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		msg := codeErr.Msg
		code := codeErr.Code
		if code == errorx.CodeDBError || code == errorx.CodeCacheError {
			zap.L().Error("存储层错误", zap.String("path", c.FullPath()), zap.Error(err))
			code = errorx.CodeServerBusy
			msg = errorx.ErrServerBusy.Msg
		}
		c.JSON(http.StatusOK, Response{Code: code, Msg: msg})
		return
	}
	zap.L().Error("未识别的错误", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusOK, Response{Code: errorx.CodeServerBusy, Msg: errorx.ErrServerBusy.Msg})
}

// HandleParamError 返回参数校验错误响应
// validator 错误翻译为可读消息，其余绑定错误直接透出
func HandleParamError(c *gin.Context, err error) {
	c.JSON(http.StatusOK, Response{
		Code: errorx.CodeInvalidParam,
		Msg:  translateValidationError(err),
	})
}
