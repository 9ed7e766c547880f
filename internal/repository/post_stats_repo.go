package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	log "log/slog"
)

// PostStatsRepo post_stats 文档：postId -> 计数覆盖
type PostStatsRepo interface {
	Get(ctx context.Context, postID string) model.StatsOverride
	All(ctx context.Context) map[string]model.StatsOverride
	Update(ctx context.Context, postID string, fn func(o model.StatsOverride) error) (model.StatsOverride, error)
	Delete(ctx context.Context, postID string) error
}

type PostStatsRepoImpl struct {
	store kv.Store
}

func NewPostStatsRepo(store kv.Store) PostStatsRepo {
	return &PostStatsRepoImpl{store: store}
}

func (s *PostStatsRepoImpl) All(ctx context.Context) map[string]model.StatsOverride {
	all := make(map[string]model.StatsOverride)
	if _, err := kv.GetJSON(ctx, s.store, consts.PostStatsKey, &all); err != nil {
		log.WarnContext(ctx, "read post stats failed, treat as empty", "err", err)
		return map[string]model.StatsOverride{}
	}
	return all
}

func (s *PostStatsRepoImpl) Get(ctx context.Context, postID string) model.StatsOverride {
	return s.All(ctx)[postID]
}

func (s *PostStatsRepoImpl) Update(ctx context.Context, postID string, fn func(o model.StatsOverride) error) (model.StatsOverride, error) {
	var result model.StatsOverride
	err := kv.UpdateJSON(ctx, s.store, consts.PostStatsKey, func(all *map[string]model.StatsOverride) error {
		if *all == nil {
			*all = make(map[string]model.StatsOverride)
		}
		cur := make(model.StatsOverride, 4)
		for k, v := range (*all)[postID] {
			cur[k] = v
		}
		if err := fn(cur); err != nil {
			return err
		}
		for k, v := range cur {
			if v < 0 {
				cur[k] = 0
			}
		}
		(*all)[postID] = cur
		result = cur
		return nil
	})
	return result, err
}

func (s *PostStatsRepoImpl) Delete(ctx context.Context, postID string) error {
	return kv.UpdateJSON(ctx, s.store, consts.PostStatsKey, func(all *map[string]model.StatsOverride) error {
		if _, ok := (*all)[postID]; !ok {
			return kv.ErrSkip
		}
		delete(*all, postID)
		return nil
	})
}
