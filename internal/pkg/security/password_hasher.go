package security

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 密码与哈希不匹配
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword 使用bcrypt算法对密码进行哈希处理，bcrypt 自带随机盐
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash 检查密码是否与哈希值匹配
func CheckPasswordHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// SecretEqual 去除首尾空白后做常量时间比较
func SecretEqual(candidate, secret string) bool {
	if secret == "" {
		return false
	}
	a := []byte(strings.TrimSpace(candidate))
	b := []byte(strings.TrimSpace(secret))
	return subtle.ConstantTimeCompare(a, b) == 1
}
