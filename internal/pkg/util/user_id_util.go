package util

import (
	"AmineForum/internal/pkg/consts"
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// LegacyUserID 旧版以昵称编码作为用户 ID，游客/匿名/空名使用 fallback
func LegacyUserID(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name != "" && name != consts.GuestName && name != consts.AnonymousName {
		return EscapeComponent(name)
	}
	if fallback == "" {
		return "guest"
	}
	return fallback
}

// EscapeComponent 与浏览器 encodeURIComponent 的编码结果一致
func EscapeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// DecodeName 解码百分号转义，失败时原样返回
func DecodeName(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// SameName 忽略大小写比较两个名字，比较前先解码百分号转义
func SameName(a, b string) bool {
	a = strings.TrimSpace(DecodeName(a))
	b = strings.TrimSpace(DecodeName(b))
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
