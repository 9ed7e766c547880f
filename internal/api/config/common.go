package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// DefaultCategories 论坛固定分区
var DefaultCategories = []string{
	"季度新番",
	"社团活动",
	"前沿技术",
	"论坛闲聊",
	"同人/杂谈",
	"网络资源",
	"音游区",
	"网站开发",
}

// Default 返回无需外部依赖即可运行的配置（badger 内存模式）
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Driver:        "badger",
			MaxValueBytes: 5 << 20,
			Badger:        BadgerConfig{InMemory: true},
			Redis:         RedisConfig{KeyPrefix: "amine:"},
			Mongo:         MongoConfig{Database: "amine", Collection: "kv"},
		},
		Security: SecurityConfig{
			JWTSecret:      "amine-web",
			JWTExpireHours: 24,
		},
		Moderation: ModerationConfig{AdminKey: "E动漫社forever"},
		Identity:   IdentityConfig{Strategy: "seq"},
		Post:       PostConfig{Categories: append([]string(nil), DefaultCategories...)},
		Content:    ContentConfig{Driver: "none", Timeout: 10},
		Cron:       CronConfig{CacheRefresh: "0 */10 * * * *"},
	}
}

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	return LoadConfigFrom("")
}

// LoadConfigFrom 指定配置文件路径加载，path 为空时读取 ./configs/config.yaml
func LoadConfigFrom(path string) error {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
	}
	v.SetEnvPrefix("AMINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Post.Categories) == 0 {
		cfg.Post.Categories = append([]string(nil), DefaultCategories...)
	}

	Cfg = cfg

	return nil
}
