package dto

// LoginDTO 账号不存在时自动注册
type LoginDTO struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// ProfileDTO nil 字段保持不变
type ProfileDTO struct {
	Name      *string `json:"name" validate:"omitempty,max=32"`
	Avatar    *string `json:"avatar"`
	Cover     *string `json:"cover"`
	School    *string `json:"school" validate:"omitempty,max=64"`
	ClassName *string `json:"className" validate:"omitempty,max=64"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Bio       *string `json:"bio" validate:"omitempty,max=200"`
	Password  *string `json:"password"`
}

// AccountDTO 不含密码摘要的账号信息
type AccountDTO struct {
	LoginID string      `json:"loginId"`
	ID      string      `json:"id"`
	Profile interface{} `json:"profile"`
	IsAdmin bool        `json:"isAdmin"`
}

// SessionDTO 登录/资料变更后返回，Token 随规范 ID 变化重新签发
type SessionDTO struct {
	Account *AccountDTO `json:"account"`
	Token   string      `json:"token,omitempty"`
	IsNew   bool        `json:"isNew"`
}
