package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
	statsSvc  service.StatsService
	replySvc  service.ReplyService
}

func NewPostActionHandler(actionSvc service.PostActionService, statsSvc service.StatsService, replySvc service.ReplyService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
		statsSvc:  statsSvc,
		replySvc:  replySvc,
	}
}

func (s *PostActionHandler) LikePost(c *gin.Context) {
	result, err := s.actionSvc.ToggleLike(c.Request.Context(), currentUser(c), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostActionDTO{Active: result.Active, Stats: result.Stats})
}

func (s *PostActionHandler) FavoritePost(c *gin.Context) {
	result, err := s.actionSvc.ToggleFavorite(c.Request.Context(), currentUser(c), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostActionDTO{Active: result.Active, Stats: result.Stats})
}

func (s *PostActionHandler) GetPostActionState(c *gin.Context) {
	liked, favorited, err := s.actionSvc.State(c.Request.Context(), currentUser(c), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostStateDTO{Liked: liked, Favorited: favorited})
}

func (s *PostActionHandler) GetStats(c *gin.Context) {
	stats, err := s.statsSvc.GetForPost(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// RecordView 去重由前端负责
func (s *PostActionHandler) RecordView(c *gin.Context) {
	stats, err := s.statsSvc.RecordView(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (s *PostActionHandler) GetReplies(c *gin.Context) {
	replies, err := s.replySvc.List(c.Request.Context(), c.Param("post_id"), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, replies)
}

func (s *PostActionHandler) CreateReply(c *gin.Context) {
	var req dto.ReplyDTO
	if !bindJSON(c, &req) {
		return
	}

	reply, err := s.replySvc.Add(c.Request.Context(), currentUser(c), c.Param("post_id"), req.Content, req.ParentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reply)
}

func (s *PostActionHandler) DeleteReply(c *gin.Context) {
	if err := s.replySvc.Delete(c.Request.Context(), currentUser(c), c.Param("post_id"), c.Param("reply_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
