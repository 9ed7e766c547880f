package api

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/api/middleware"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowOrigins))
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	requireAdmin := middleware.CheckRoles(group.AdminResolver, consts.ClaimRoleAdmin)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.GET("/:user_id/info", group.UserHandler.GetUserInfoByID)
			userGroup.GET("/:user_id/meta", group.UserHandler.GetMeta)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
				authGroup.PUT("/info", group.UserHandler.UpdateProfile)
				authGroup.GET("/restrictions", group.UserHandler.GetRestrictions)
				authGroup.GET("/likes", group.UserHandler.GetUserLikes)
				authGroup.GET("/favorites", group.UserHandler.GetUserFavorites)
				authGroup.POST("/:user_id/report", group.UserHandler.Report)
			}
		}

		relationGroup := apiGroup.Group("/user-relation")
		{
			optGroup := relationGroup.Group("")
			optGroup.Use(middleware.AuthOptionalMiddleware())
			{
				optGroup.GET("/follow/:user_id", group.RelationHandler.GetFollowState)
				optGroup.GET("/followers/:user_id", group.RelationHandler.GetFollowers)
				optGroup.GET("/followings/:user_id", group.RelationHandler.GetFollowings)
			}

			authGroup := relationGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/follow/:user_id", group.RelationHandler.ToggleFollow)
				authGroup.POST("/block/:user_id", group.RelationHandler.ToggleBlock)
				authGroup.GET("/block/:user_id", group.RelationHandler.GetBlockState)
				authGroup.GET("/blocks", group.RelationHandler.GetBlockList)
			}
		}

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("/categories", group.PostHandler.GetCategories)
			postGroup.GET("/:post_id/stats", group.PostActionHandler.GetStats)
			postGroup.POST("/:post_id/view", group.PostActionHandler.RecordView)

			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.PostHandler.ListPosts)
				authOptGroup.GET("/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/:post_id/replies", group.PostActionHandler.GetReplies)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				authGroup.POST("/:post_id/like", group.PostActionHandler.LikePost)
				authGroup.POST("/:post_id/favorite", group.PostActionHandler.FavoritePost)
				authGroup.GET("/:post_id/state", group.PostActionHandler.GetPostActionState)
				authGroup.POST("/:post_id/replies", group.PostActionHandler.CreateReply)
				authGroup.DELETE("/:post_id/replies/:reply_id", group.PostActionHandler.DeleteReply)
			}

			adminGroup := authGroup.Group("")
			adminGroup.Use(requireAdmin)
			{
				adminGroup.PUT("/:post_id/pin", group.PostHandler.PinPost)
			}
		}

		imGroup := apiGroup.Group("/im")
		imGroup.Use(middleware.AuthMiddleware())
		{
			imGroup.POST("/send", group.IMHandler.SendMessage)
			imGroup.GET("/threads", group.IMHandler.GetThreads)
			imGroup.GET("/history", group.IMHandler.GetChatHistory)
			imGroup.POST("/recall", group.IMHandler.RecallMessage)
			imGroup.POST("/delete", group.IMHandler.DeleteMessage)
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware(), requireAdmin)
		{
			adminGroup.POST("/verify", group.AdminHandler.VerifyAdminKey)
			adminGroup.PUT("/users/:user_id/meta", group.AdminHandler.EditMeta)
			adminGroup.PUT("/users/:user_id/mute", group.AdminHandler.MuteUser)
			adminGroup.PUT("/users/:user_id/ban", group.AdminHandler.BanUser)
			adminGroup.DELETE("/users/:user_id", group.AdminHandler.DeleteUser)
			adminGroup.POST("/cache/refresh", group.PostHandler.RefreshCache)
		}

		apiGroup.GET("/stats/ws", group.WSHandler.StatsStream)
	}

	return r
}
