package model

import (
	"time"
)

// Account 以 loginId 为键保存在 accounts 文档中
type Account struct {
	LoginID      string    `json:"loginId"`
	ID           string    `json:"id"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Profile      Profile   `json:"profile"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Profile struct {
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Cover     string `json:"cover"`
	School    string `json:"school"`
	ClassName string `json:"className"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
}

// DisplayName 未设置昵称时回退到 loginId
func (a *Account) DisplayName() string {
	if a.Profile.Name != "" {
		return a.Profile.Name
	}
	return a.LoginID
}

// Snapshot 生成帖子/回复中嵌入的作者快照
func (a *Account) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		ID:        a.ID,
		Name:      a.DisplayName(),
		Avatar:    a.Profile.Avatar,
		Cover:     a.Profile.Cover,
		School:    a.Profile.School,
		ClassName: a.Profile.ClassName,
		Email:     a.Profile.Email,
		IsAdmin:   a.IsAdmin,
	}
}
