package dto

// PostUpsertDTO ID 为空时新建
type PostUpsertDTO struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,max=32"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published"`
}

type PostListQuery struct {
	Category string `form:"category"`
}

type PinDTO struct {
	Pinned bool `json:"pinned"`
}

// PostActionDTO 点赞/收藏切换结果
type PostActionDTO struct {
	Active bool        `json:"active"`
	Stats  interface{} `json:"stats"`
}

type PostStateDTO struct {
	Liked     bool `json:"liked"`
	Favorited bool `json:"favorited"`
}

type ReplyDTO struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}
