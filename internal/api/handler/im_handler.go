package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
)

type IMHandler struct {
	imSvc service.IMService
}

func NewIMHandler(imSvc service.IMService) *IMHandler {
	return &IMHandler{imSvc: imSvc}
}

func (s *IMHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	msg, err := s.imSvc.Send(c.Request.Context(), currentUser(c), req.To, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *IMHandler) GetThreads(c *gin.Context) {
	threads, err := s.imSvc.Threads(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, threads)
}

func (s *IMHandler) GetChatHistory(c *gin.Context) {
	peer := c.Query("peer")
	if peer == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	msgs, err := s.imSvc.History(c.Request.Context(), currentUser(c), peer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msgs)
}

func (s *IMHandler) RecallMessage(c *gin.Context) {
	var req dto.MessageRefDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	msg, err := s.imSvc.Recall(c.Request.Context(), currentUser(c), req.Peer, req.MessageID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *IMHandler) DeleteMessage(c *gin.Context) {
	var req dto.MessageRefDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.imSvc.Delete(c.Request.Context(), currentUser(c), req.Peer, req.MessageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
