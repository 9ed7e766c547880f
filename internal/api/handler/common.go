package handler

import (
	"AmineForum/internal/api/dto"
	"AmineForum/internal/api/middleware"
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/pkg/util"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.CtxUserID)
}

// bindJSON 绑定后再做一次结构体校验，失败时已写回响应
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, err)
		return false
	}
	if err := util.ValidateDTO(req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return false
	}
	return true
}

func toAccountDTO(a *model.Account) *dto.AccountDTO {
	if a == nil {
		return nil
	}
	return &dto.AccountDTO{
		LoginID: a.LoginID,
		ID:      a.ID,
		Profile: a.Profile,
		IsAdmin: a.IsAdmin,
	}
}
