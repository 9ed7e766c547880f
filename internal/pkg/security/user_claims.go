package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret         = []byte("amine-web")
	jwtExpirationTime = time.Hour * 24
)

// Setup 由启动流程按配置覆盖签名密钥与有效期
func Setup(secret string, expire time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if expire > 0 {
		jwtExpirationTime = expire
	}
}

// UserClaims Token 中携带的会话信息，UserID 为规范 ID
type UserClaims struct {
	UserID  string   `json:"user_id"`
	LoginID string   `json:"login_id"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}
