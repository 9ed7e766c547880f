package model

import (
	"time"
)

type Reply struct {
	ID          string         `json:"id"`
	Author      AuthorSnapshot `json:"author"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"createdAt"`
	ParentID    *string        `json:"parentId"`
	ReplyToName string         `json:"replyToName,omitempty"`
}
