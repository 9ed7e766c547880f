package model

import (
	"AmineForum/internal/pkg/consts"
	"time"
)

// AdminMeta 管理元数据，缺失时等价于全部默认值
type AdminMeta struct {
	Title            string    `json:"title"`
	Role             string    `json:"role,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActiveAt     time.Time `json:"lastActiveAt"`
	ReportsReceived  int64     `json:"reportsReceived"`
	ReportsSubmitted int64     `json:"reportsSubmitted"`
	MuteCount        int64     `json:"muteCount"`
	BanCount         int64     `json:"banCount"`
	IsMuted          bool      `json:"isMuted"`
	IsBanned         bool      `json:"isBanned"`
}

// AdminMetaPatch 仅覆盖非 nil 字段
type AdminMetaPatch struct {
	Title            *string
	Role             *string
	CreatedAt        *time.Time
	LastActiveAt     *time.Time
	ReportsReceived  *int64
	ReportsSubmitted *int64
	MuteCount        *int64
	BanCount         *int64
	IsMuted          *bool
	IsBanned         *bool
}

func (p AdminMetaPatch) Apply(m *AdminMeta) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
	}
	if p.LastActiveAt != nil {
		m.LastActiveAt = *p.LastActiveAt
	}
	if p.ReportsReceived != nil {
		m.ReportsReceived = *p.ReportsReceived
	}
	if p.ReportsSubmitted != nil {
		m.ReportsSubmitted = *p.ReportsSubmitted
	}
	if p.MuteCount != nil {
		m.MuteCount = *p.MuteCount
	}
	if p.BanCount != nil {
		m.BanCount = *p.BanCount
	}
	if p.IsMuted != nil {
		m.IsMuted = *p.IsMuted
	}
	if p.IsBanned != nil {
		m.IsBanned = *p.IsBanned
	}
}

// Normalize 计数器不允许为负，未知角色视为未设置
func (m *AdminMeta) Normalize() {
	m.ReportsReceived = max(m.ReportsReceived, 0)
	m.ReportsSubmitted = max(m.ReportsSubmitted, 0)
	m.MuteCount = max(m.MuteCount, 0)
	m.BanCount = max(m.BanCount, 0)
	if m.Role != consts.RoleAdmin && m.Role != consts.RoleUser {
		m.Role = ""
	}
}

// EffectiveAdmin 角色已设置时以角色为准，否则使用账户上的 isAdmin
func EffectiveAdmin(isAdmin bool, meta *AdminMeta) bool {
	if meta != nil && meta.Role != "" {
		return meta.Role == consts.RoleAdmin
	}
	return isAdmin
}

// TagInfo 作者名旁展示的徽章
type TagInfo struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

// BuildTagInfo 自定义头衔优先，其次管理员徽章，普通用户返回 nil
func BuildTagInfo(isAdmin bool, meta *AdminMeta) *TagInfo {
	admin := EffectiveAdmin(isAdmin, meta)
	if meta != nil {
		if title := trimSpace(meta.Title); title != "" {
			variant := consts.RoleUser
			if admin {
				variant = consts.RoleAdmin
			}
			return &TagInfo{Label: title, Variant: variant}
		}
	}
	if admin {
		return &TagInfo{Label: consts.AdminTagLabel, Variant: consts.RoleAdmin}
	}
	return nil
}

// Restrictions 禁言/封禁状态
type Restrictions struct {
	IsMuted  bool `json:"isMuted"`
	IsBanned bool `json:"isBanned"`
}
