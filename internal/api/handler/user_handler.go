package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/api/middleware"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type UserHandler struct {
	accountSvc    service.AccountService
	moderationSvc service.ModerationService
	actionSvc     service.PostActionService
}

func NewUserHandler(accountSvc service.AccountService, moderationSvc service.ModerationService, actionSvc service.PostActionService) *UserHandler {
	return &UserHandler{
		accountSvc:    accountSvc,
		moderationSvc: moderationSvc,
		actionSvc:     actionSvc,
	}
}

func (s *UserHandler) Login(c *gin.Context) {
	var req dto.LoginDTO
	if !bindJSON(c, &req) {
		return
	}

	session, err := s.accountSvc.Login(c.Request.Context(), req.LoginID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SessionDTO{
		Account: toAccountDTO(session.Account),
		Token:   session.Token,
		IsNew:   session.IsNew,
	})
}

// GetUserInfo 当前登录用户
func (s *UserHandler) GetUserInfo(c *gin.Context) {
	info, err := s.accountSvc.Info(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

func (s *UserHandler) GetUserInfoByID(c *gin.Context) {
	info, err := s.accountSvc.Info(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// UpdateProfile 规范 ID 变化时重新签发 Token
func (s *UserHandler) UpdateProfile(c *gin.Context) {
	userID := currentUser(c)

	var req dto.ProfileDTO
	if !bindJSON(c, &req) {
		return
	}
	var patch service.ProfilePatch
	if err := copier.Copy(&patch, &req); err != nil {
		response.Error(c, err)
		return
	}

	account, err := s.accountSvc.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := dto.SessionDTO{Account: toAccountDTO(account)}
	if account.ID != userID {
		token, err := security.GenerateToken(account.ID, account.LoginID, c.GetStringSlice(middleware.CtxRoles))
		if err != nil {
			response.Error(c, err)
			return
		}
		result.Token = token
	}
	response.Success(c, result)
}

func (s *UserHandler) GetMeta(c *gin.Context) {
	response.Success(c, s.moderationSvc.GetMeta(c.Request.Context(), c.Param("user_id")))
}

func (s *UserHandler) GetRestrictions(c *gin.Context) {
	response.Success(c, s.moderationSvc.Restrictions(c.Request.Context(), currentUser(c)))
}

func (s *UserHandler) Report(c *gin.Context) {
	if err := s.moderationSvc.Report(c.Request.Context(), currentUser(c), c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserLikes(c *gin.Context) {
	ids, err := s.actionSvc.Liked(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}

func (s *UserHandler) GetUserFavorites(c *gin.Context) {
	ids, err := s.actionSvc.Favorited(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}
