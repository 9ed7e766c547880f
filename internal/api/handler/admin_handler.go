package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	moderationSvc service.ModerationService
}

func NewAdminHandler(moderationSvc service.ModerationService) *AdminHandler {
	return &AdminHandler{moderationSvc: moderationSvc}
}

func (s *AdminHandler) VerifyAdminKey(c *gin.Context) {
	var req dto.AdminKeyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if !s.moderationSvc.VerifyAdminKey(req.AdminKey) {
		response.Error(c, service.ErrAdminKeyIncorrect)
		return
	}
	response.Success(c, nil)
}

// EditMeta 管理员可直接修改自己的头衔，修改他人需附带密钥
func (s *AdminHandler) EditMeta(c *gin.Context) {
	var req dto.MetaEditDTO
	if !bindJSON(c, &req) {
		return
	}

	meta, err := s.moderationSvc.EditMeta(c.Request.Context(), currentUser(c), c.Param("user_id"), service.MetaEdit{
		Title:    req.Title,
		Role:     req.Role,
		AdminKey: req.AdminKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, meta)
}

func (s *AdminHandler) MuteUser(c *gin.Context) {
	var req dto.SwitchDTO
	if !bindJSON(c, &req) {
		return
	}

	meta, err := s.moderationSvc.SetMuted(c.Request.Context(), currentUser(c), c.Param("user_id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, meta)
}

func (s *AdminHandler) BanUser(c *gin.Context) {
	var req dto.SwitchDTO
	if !bindJSON(c, &req) {
		return
	}

	meta, err := s.moderationSvc.SetBanned(c.Request.Context(), currentUser(c), c.Param("user_id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, meta)
}

func (s *AdminHandler) DeleteUser(c *gin.Context) {
	if err := s.moderationSvc.DeleteUser(c.Request.Context(), currentUser(c), c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
