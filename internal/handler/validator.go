package handler

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
)

var trans ut.Translator

// InitTranslator 初始化校验错误翻译器
// locale 支持 zh / en，字段名取 json tag 使错误消息与请求体一致
func InitTranslator(locale string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhT := zh.New()
	enT := en.New()
	uni := ut.New(enT, zhT, enT)
	trans, ok = uni.GetTranslator(locale)
	if !ok {
		trans, _ = uni.GetTranslator("en")
	}
	switch locale {
	case "zh":
		return zhTranslations.RegisterDefaultTranslations(v, trans)
	default:
		return enTranslations.RegisterDefaultTranslations(v, trans)
	}
}

// translateValidationError 将校验错误翻译为可读消息
func translateValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || trans == nil {
		return "请求参数错误"
	}
	var parts []string
	for _, msg := range validationErrs.Translate(trans) {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
