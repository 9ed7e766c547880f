package kv

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultCloseTimeout = 5 * time.Second

type kvEntry struct {
	Key       string `gorm:"column:kv_key;type:varchar(191);primaryKey"`
	Value     []byte `gorm:"column:value;type:longblob"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// GormStore MySQL 单表存储
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, errors.Wrap(err, "auto migrate kv_entries")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	return upsert(s.db.WithContext(ctx), key, value)
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&kvEntry{}).Error
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&kvEntry{}).
		Where("kv_key LIKE ? ESCAPE '!'", escapeLike(prefix)+"%").
		Pluck("kv_key", &keys).Error
	return keys, err
}

// Update 在事务内 SELECT ... FOR UPDATE
func (s *GormStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e kvEntry
		exists := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("kv_key = ?", key).Take(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			exists = false
		} else if err != nil {
			return err
		}

		next, write, err := apply(fn, e.Value, exists)
		if err != nil || !write {
			return err
		}
		if next == nil {
			if !exists {
				return nil
			}
			return tx.Where("kv_key = ?", key).Delete(&kvEntry{}).Error
		}
		return upsert(tx, key, next)
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func upsert(db *gorm.DB, key string, value []byte) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
