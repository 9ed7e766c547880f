package util

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxLoginIDLength  = 64
	MinPasswordLength = 8
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("字段 [%s] 校验失败，规则 [%s]", firstError.Field(), firstError.Tag())
		}
		return err
	}
	return nil
}

// ValidLoginID 非空、不超过 64 个字符、不含空白
func ValidLoginID(loginID string) bool {
	if loginID == "" || utf8.RuneCountInString(loginID) > MaxLoginIDLength {
		return false
	}
	return strings.IndexFunc(loginID, unicode.IsSpace) < 0
}

func ValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}
