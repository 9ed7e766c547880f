package model

import (
	"AmineForum/internal/pkg/consts"
	"time"
)

type Post struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Category           string         `json:"category"`
	Content            string         `json:"content,omitempty"`
	Summary            string         `json:"summary"`
	Author             AuthorSnapshot `json:"author"`
	Date               string         `json:"date"`
	Tags               []string       `json:"tags"`
	Status             string         `json:"status"`
	ReadTime           string         `json:"readTime"`
	Views              int64          `json:"views"`
	Likes              int64          `json:"likes"`
	Favorites          int64          `json:"favorites"`
	Replies            int64          `json:"replies"`
	IsPinnedGlobally   bool           `json:"isPinnedGlobally"`
	PinnedInCategories []string       `json:"pinnedInCategories"`
	Order              int            `json:"order"`
	UpdatedAt          string         `json:"updatedAt,omitempty"`
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// Time 解析 date 字段，无法解析时返回零值
func (p *Post) Time() time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize 补齐 order、status 与作者快照
func (p *Post) Normalize() {
	if p.Order == 0 {
		p.Order = consts.DefaultPostOrder
	}
	if p.Status == "" {
		p.Status = consts.PostStatusPublished
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.PinnedInCategories == nil {
		p.PinnedInCategories = []string{}
	}
	p.Author.Normalize()
}

func (p *Post) IsDraft() bool {
	return p.Status == consts.PostStatusDraft
}

// BaseStats 帖子文档中自带的计数，作为统计覆盖层的基线
func (p *Post) BaseStats() Stats {
	return Stats{Views: p.Views, Likes: p.Likes, Favorites: p.Favorites, Replies: p.Replies}
}

func (p *Post) ApplyStats(s Stats) {
	p.Views, p.Likes, p.Favorites, p.Replies = s.Views, s.Likes, s.Favorites, s.Replies
}

// PostMetadata 静态内容源 metadata.json 中的条目
type PostMetadata struct {
	ID       string   `json:"id"`
	PinnedIn []string `json:"pinnedIn"`
	Order    int      `json:"order"`
}
