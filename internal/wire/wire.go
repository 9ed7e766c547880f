package wire

import (
	"AmineForum/internal/api"
	"AmineForum/internal/api/config"
	"AmineForum/internal/api/handler"
	"AmineForum/internal/job"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/cron"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/kafka"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/repository"
	"AmineForum/internal/service"
	"errors"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Services 业务层实例，HTTP 服务与命令行工具共用
type Services struct {
	Identity   repository.IdentityRepo
	Account    service.AccountService
	Moderation service.ModerationService
	Social     service.SocialService
	Post       service.PostService
	Stats      service.StatsService
	PostAction service.PostActionService
	Reply      service.ReplyService
	IM         service.IMService
	Migration  service.MigrationService
}

// BuildServices 组装仓储与服务，source 可以为 nil
func BuildServices(store kv.Store, cfg *config.Config, bus *event.Bus) (*Services, error) {
	security.Setup(cfg.Security.JWTSecret, time.Duration(cfg.Security.JWTExpireHours)*time.Hour)

	source, err := OpenSource(cfg.Content)
	if err != nil {
		return nil, err
	}

	identityRepo := repository.NewIdentityRepo(store, cfg.Identity.Strategy)
	accountRepo := repository.NewAccountRepo(store)
	adminMetaRepo := repository.NewAdminMetaRepo(store)
	followRepo := repository.NewFollowRepo(store)
	blockRepo := repository.NewBlockRepo(store)
	actionRepo := repository.NewPostActionRepo(store)
	postRepo := repository.NewPostRepo(store)
	statsRepo := repository.NewPostStatsRepo(store)
	replyRepo := repository.NewReplyRepo(store)
	messageRepo := repository.NewMessageRepo(store)

	postService := service.NewPostService(postRepo, statsRepo, replyRepo, actionRepo, accountRepo, adminMetaRepo, blockRepo,
		source, bus, cfg.Post.Categories)
	statsService := service.NewStatsService(statsRepo, postRepo, bus)
	migrationService := service.NewMigrationService(identityRepo, actionRepo, adminMetaRepo, accountRepo, blockRepo,
		messageRepo, followRepo, replyRepo, postService, bus)

	return &Services{
		Identity: identityRepo,
		Account: service.NewAccountService(accountRepo, identityRepo, adminMetaRepo, followRepo, blockRepo,
			postService, migrationService),
		Moderation: service.NewModerationService(adminMetaRepo, accountRepo, followRepo, blockRepo, postService,
			cfg.Moderation.AdminKey),
		Social:     service.NewSocialService(followRepo, blockRepo, accountRepo, adminMetaRepo),
		Post:       postService,
		Stats:      statsService,
		PostAction: service.NewPostActionService(actionRepo, postRepo, statsService),
		Reply:      service.NewReplyService(replyRepo, postRepo, accountRepo, adminMetaRepo, blockRepo, statsService),
		IM:         service.NewIMService(messageRepo, accountRepo, adminMetaRepo, blockRepo),
		Migration:  migrationService,
	}, nil
}

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router    *gin.Engine
	Store     kv.Store
	Bus       *event.Bus
	Services  *Services
	CronMgr   *cron.Manager
	Forwarder *kafka.Forwarder
}

func BuildApplication(store kv.Store, cfg *config.Config) (*ApplicationContainer, error) {
	bus := event.NewBus()

	svcs, err := BuildServices(store, cfg, bus)
	if err != nil {
		return nil, err
	}

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(svcs.Account, svcs.Moderation, svcs.PostAction),
		RelationHandler:   handler.NewRelationHandler(svcs.Social),
		PostHandler:       handler.NewPostHandler(svcs.Post),
		PostActionHandler: handler.NewPostActionHandler(svcs.PostAction, svcs.Stats, svcs.Reply),
		IMHandler:         handler.NewIMHandler(svcs.IM),
		AdminHandler:      handler.NewAdminHandler(svcs.Moderation),
		WSHandler:         handler.NewWsHandler(bus),
		AdminResolver: func(c *gin.Context, userID, role string) bool {
			return role == consts.ClaimRoleAdmin && svcs.Moderation.IsAdmin(c.Request.Context(), userID)
		},
	}

	router := api.SetupRouter(handlers, cfg.Server)

	var forwarder *kafka.Forwarder
	if cfg.Kafka.Enable {
		if forwarder, err = kafka.NewForwarder(cfg.Kafka, bus); err != nil {
			return nil, err
		}
	}

	// 没有静态内容源时缓存只由本地发布维护
	cacheSpec := cfg.Cron.CacheRefresh
	if cfg.Content.Driver == "" || cfg.Content.Driver == "none" {
		cacheSpec = ""
	}
	cronMgr := cron.NewCronManager(job.NewCacheRefreshJob(svcs.Post), cacheSpec)

	return &ApplicationContainer{
		Router:    router,
		Store:     store,
		Bus:       bus,
		Services:  svcs,
		CronMgr:   cronMgr,
		Forwarder: forwarder,
	}, nil
}

// Close 依次关闭事件转发与存储
func (a *ApplicationContainer) Close() error {
	var errs []error
	if a.Forwarder != nil {
		errs = append(errs, a.Forwarder.Close())
	}
	if err := a.Store.Close(); err != nil {
		log.Error("close storage failed", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
