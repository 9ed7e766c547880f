package model

const (
	StatViews     = "views"
	StatLikes     = "likes"
	StatFavorites = "favorites"
	StatReplies   = "replies"
)

// Stats 帖子计数，均不小于 0
type Stats struct {
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Favorites int64 `json:"favorites"`
	Replies   int64 `json:"replies"`
}

// StatsOverride post_stats 中的记录，只有出现过的字段覆盖基线
type StatsOverride map[string]int64

func ValidStatField(field string) bool {
	switch field {
	case StatViews, StatLikes, StatFavorites, StatReplies:
		return true
	}
	return false
}

// Merge 在基线上叠加覆盖值并截断负数
func (o StatsOverride) Merge(base Stats) Stats {
	s := base
	if v, ok := o[StatViews]; ok {
		s.Views = v
	}
	if v, ok := o[StatLikes]; ok {
		s.Likes = v
	}
	if v, ok := o[StatFavorites]; ok {
		s.Favorites = v
	}
	if v, ok := o[StatReplies]; ok {
		s.Replies = v
	}
	s.Views = max(s.Views, 0)
	s.Likes = max(s.Likes, 0)
	s.Favorites = max(s.Favorites, 0)
	s.Replies = max(s.Replies, 0)
	return s
}

func (s Stats) Field(field string) int64 {
	switch field {
	case StatViews:
		return s.Views
	case StatLikes:
		return s.Likes
	case StatFavorites:
		return s.Favorites
	case StatReplies:
		return s.Replies
	}
	return 0
}
