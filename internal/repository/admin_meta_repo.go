package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	log "log/slog"
)

// AdminMetaRepo admin_meta:{userId}
type AdminMetaRepo interface {
	Read(ctx context.Context, userID string) *model.AdminMeta
	Write(ctx context.Context, userID string, patch model.AdminMetaPatch) (*model.AdminMeta, error)
	Update(ctx context.Context, userID string, fn func(meta *model.AdminMeta) error) (*model.AdminMeta, error)
	Delete(ctx context.Context, userID string) error
	Rekey(ctx context.Context, oldID, newID string) error
}

type AdminMetaRepoImpl struct {
	store kv.Store
}

func NewAdminMetaRepo(store kv.Store) AdminMetaRepo {
	return &AdminMetaRepoImpl{store: store}
}

func adminMetaKey(userID string) string {
	return consts.AdminMetaKey + userID
}

// Read 缺失或读取失败都返回默认值
func (s *AdminMetaRepoImpl) Read(ctx context.Context, userID string) *model.AdminMeta {
	meta := &model.AdminMeta{}
	if userID == "" {
		return meta
	}
	if _, err := kv.GetJSON(ctx, s.store, adminMetaKey(userID), meta); err != nil {
		log.WarnContext(ctx, "read admin meta failed, using defaults", "user_id", userID, "err", err)
		return &model.AdminMeta{}
	}
	meta.Normalize()
	return meta
}

// Write 默认值叠加 patch 后整体覆盖
func (s *AdminMetaRepoImpl) Write(ctx context.Context, userID string, patch model.AdminMetaPatch) (*model.AdminMeta, error) {
	meta := &model.AdminMeta{}
	if userID == "" {
		return meta, nil
	}
	patch.Apply(meta)
	meta.Normalize()
	if err := kv.SetJSON(ctx, s.store, adminMetaKey(userID), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *AdminMetaRepoImpl) Update(ctx context.Context, userID string, fn func(meta *model.AdminMeta) error) (*model.AdminMeta, error) {
	if userID == "" {
		return &model.AdminMeta{}, nil
	}
	var result model.AdminMeta
	err := kv.UpdateJSON(ctx, s.store, adminMetaKey(userID), func(meta *model.AdminMeta) error {
		meta.Normalize()
		err := fn(meta)
		meta.Normalize()
		result = *meta
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *AdminMetaRepoImpl) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.store.Delete(ctx, adminMetaKey(userID))
}

func (s *AdminMetaRepoImpl) Rekey(ctx context.Context, oldID, newID string) error {
	return MoveKey(ctx, s.store, adminMetaKey(oldID), adminMetaKey(newID))
}
