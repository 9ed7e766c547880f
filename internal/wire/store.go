package wire

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/pkg/content"
	"AmineForum/internal/pkg/database"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/minio"
	"AmineForum/internal/pkg/mongo"
	"AmineForum/internal/pkg/redis"
	"fmt"
	log "log/slog"
	"time"
)

// OpenStore 按 storage.driver 打开存储，并套上容量限制与指标
func OpenStore(cfg config.StorageConfig) (kv.Store, error) {
	var (
		store kv.Store
		err   error
	)

	switch cfg.Driver {
	case "", "badger":
		badgerCfg := kv.DefaultBadgerConfig(cfg.Badger.Path)
		badgerCfg.InMemory = cfg.Badger.InMemory
		badgerCfg.SyncWrites = cfg.Badger.SyncWrites
		store, err = kv.OpenBadger(badgerCfg)
	case "redis":
		rdb, rerr := redis.NewClient(cfg.Redis)
		if rerr != nil {
			return nil, rerr
		}
		store = kv.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
	case "mongo":
		db, merr := mongo.NewDatabase(cfg.Mongo)
		if merr != nil {
			return nil, merr
		}
		store = kv.NewMongoStore(db, cfg.Mongo.Collection)
	case "mysql":
		db, derr := database.NewGormDB(cfg.DB)
		if derr != nil {
			return nil, derr
		}
		store, err = kv.NewGormStore(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = "badger"
	}
	log.Info("Storage initialized", "driver", driver, "max_value_bytes", cfg.MaxValueBytes)
	return kv.Instrument(kv.WithQuota(store, cfg.MaxValueBytes), driver), nil
}

// OpenSource content.driver 为 none 时返回 nil，帖子只来自本地发布
func OpenSource(cfg config.ContentConfig) (content.Source, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "http":
		return content.NewHTTPSource(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second), nil
	case "minio":
		client, err := minio.NewClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return content.NewMinIOSource(client, cfg.MinIO.Bucket, cfg.MinIO.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown content driver %q", cfg.Driver)
	}
}
