package dto

type SendMessageDTO struct {
	To      string `json:"to" binding:"required"`
	Content string `json:"content"`
}

type MessageRefDTO struct {
	Peer      string `json:"peer" binding:"required"`
	MessageID string `json:"messageId" binding:"required"`
}
