package model

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/util"
	"strings"

	"github.com/goccy/go-json"
)

// AuthorSnapshot 写入时的作者快照，不会自动跟随资料修改
type AuthorSnapshot struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar"`
	Cover     string   `json:"cover,omitempty"`
	School    string   `json:"school"`
	ClassName string   `json:"className"`
	Email     string   `json:"email"`
	IsAdmin   bool     `json:"isAdmin"`
	TagInfo   *TagInfo `json:"tagInfo,omitempty"`
}

type authorAlias AuthorSnapshot

// UnmarshalJSON 旧数据中 author 可能是纯字符串（作者名）
func (a *AuthorSnapshot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AuthorSnapshot{}
		a.Normalize()
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*a = AuthorSnapshot{Name: name}
		a.Normalize()
		return nil
	}
	var alias authorAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = AuthorSnapshot(alias)
	a.Normalize()
	return nil
}

// Normalize 补齐缺省字段：无名作者为“匿名”，无 ID 时按名字推导旧版 ID
func (a *AuthorSnapshot) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		a.Name = consts.AnonymousName
	}
	if a.ID == "" {
		a.ID = util.LegacyUserID(a.Name, "guest")
	}
}

// Matches 按 ID 或名字（忽略大小写、解码转义）匹配
func (a *AuthorSnapshot) Matches(id, name string) bool {
	if id != "" && a.ID == id {
		return true
	}
	return util.SameName(a.Name, name)
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
