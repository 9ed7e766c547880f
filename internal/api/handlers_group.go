package api

import (
	"AmineForum/internal/api/handler"
	"AmineForum/internal/api/middleware"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler       *handler.UserHandler
	RelationHandler   *handler.RelationHandler
	PostHandler       *handler.PostHandler
	PostActionHandler *handler.PostActionHandler
	IMHandler         *handler.IMHandler
	AdminHandler      *handler.AdminHandler
	WSHandler         *handler.WsHandler

	// AdminResolver 按存储中的当前状态判断管理员身份
	AdminResolver middleware.RoleResolver
}
