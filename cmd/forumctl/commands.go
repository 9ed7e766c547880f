package main

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/logger"
	"AmineForum/internal/wire"
	"context"

	"github.com/spf13/cobra"
)

var (
	configPath string

	// runtime 由 PersistentPreRunE 打开，PersistentPostRunE 关闭
	store    kv.Store
	services *wire.Services

	rootCmd = &cobra.Command{
		Use:          "forumctl",
		Short:        "AmineForum 运维工具",
		Long:         "直接操作论坛存储：旧版 ID 迁移、管理员授予与撤销、静态帖子缓存刷新。",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfigFrom(configPath); err != nil {
				return err
			}
			logger.InitLogger()

			var err error
			if store, err = wire.OpenStore(config.Cfg.Storage); err != nil {
				return err
			}
			services, err = wire.BuildServices(store, config.Cfg, event.NewBus())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if store == nil {
				return nil
			}
			return store.Close()
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "把旧版用户 ID 下的数据迁移到新 ID",
		RunE:  runMigrate,
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve [id...]",
		Short: "查询 ID 对应的规范 ID",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolve,
	}

	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "管理员账号",
	}
	adminGrantCmd = &cobra.Command{
		Use:   "grant [loginId]",
		Short: "授予管理员",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdmin(true),
	}
	adminRevokeCmd = &cobra.Command{
		Use:   "revoke [loginId]",
		Short: "撤销管理员",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdmin(false),
	}

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "帖子缓存",
	}
	cacheRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "从静态内容源重建帖子缓存",
		RunE:  runCacheRefresh,
	}
)

var (
	migrateOld  string
	migrateNew  string
	migrateName string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径，缺省读取 ./configs/config.yaml")

	migrateCmd.Flags().StringVar(&migrateOld, "old", "", "旧 ID")
	migrateCmd.Flags().StringVar(&migrateNew, "new", "", "新 ID")
	migrateCmd.Flags().StringVar(&migrateName, "name", "", "迁移后写入帖子作者快照的昵称")
	_ = migrateCmd.MarkFlagRequired("old")
	_ = migrateCmd.MarkFlagRequired("new")

	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd)
	cacheCmd.AddCommand(cacheRefreshCmd)
	rootCmd.AddCommand(migrateCmd, resolveCmd, adminCmd, cacheCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	return logger.WithTraceID(cmd.Context(), "cli-")
}
