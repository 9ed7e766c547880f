package model

import (
	"time"
)

// Message 私信，撤回后保留元数据，内容替换为占位文本
type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	FromName   string    `json:"fromName"`
	FromAvatar string    `json:"fromAvatar"`
	ToName     string    `json:"toName"`
	ToAvatar   string    `json:"toAvatar"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Recalled   bool      `json:"recalled,omitempty"`
}

// Thread 私信会话概览
type Thread struct {
	PeerID     string   `json:"peerId"`
	PeerName   string   `json:"peerName"`
	PeerAvatar string   `json:"peerAvatar"`
	Last       *Message `json:"last"`
	Count      int      `json:"count"`
}
