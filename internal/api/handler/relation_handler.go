package handler

import (
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
)

type RelationHandler struct {
	socialSvc service.SocialService
}

func NewRelationHandler(socialSvc service.SocialService) *RelationHandler {
	return &RelationHandler{socialSvc: socialSvc}
}

func (s *RelationHandler) ToggleFollow(c *gin.Context) {
	state, err := s.socialSvc.ToggleFollow(c.Request.Context(), currentUser(c), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

// GetFollowState 游客 isFollowing 恒为 false
func (s *RelationHandler) GetFollowState(c *gin.Context) {
	ctx := c.Request.Context()
	targetID := c.Param("user_id")

	count, err := s.socialSvc.FollowerCount(ctx, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	following, err := s.socialSvc.IsFollowing(ctx, currentUser(c), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.FollowState{IsFollowing: following, Count: count})
}

func (s *RelationHandler) GetFollowers(c *gin.Context) {
	ids, err := s.socialSvc.Followers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}

func (s *RelationHandler) GetFollowings(c *gin.Context) {
	ids, err := s.socialSvc.Following(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}

func (s *RelationHandler) ToggleBlock(c *gin.Context) {
	blocked, err := s.socialSvc.ToggleBlock(c.Request.Context(), currentUser(c), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"blocked": blocked})
}

func (s *RelationHandler) GetBlockState(c *gin.Context) {
	blocked, err := s.socialSvc.IsBlocked(c.Request.Context(), currentUser(c), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"blocked": blocked})
}

func (s *RelationHandler) GetBlockList(c *gin.Context) {
	ids, err := s.socialSvc.ListBlocked(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}
