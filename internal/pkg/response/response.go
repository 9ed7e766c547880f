package response

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	PayloadTooLarge     = 413
	InternalServerError = 500
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误，业务错误可能被 errors.Wrap 包装过
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, service.ErrParamInvalid.Error())
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	if errors.Is(err, kv.ErrQuotaExceeded) {
		Fail(c, PayloadTooLarge, service.ErrStorageFull.Error())
		return
	}

	if target, code, ok := lookup(err); ok {
		Fail(c, code, target.Error())
		return
	}

	log.ErrorContext(c.Request.Context(), "Error", "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}

func lookup(err error) (error, int, bool) {
	if code, ok := service.ErrorMap[err]; ok {
		return err, code, true
	}
	for target, code := range service.ErrorMap {
		if errors.Is(err, target) {
			return target, code, true
		}
	}
	return nil, 0, false
}
