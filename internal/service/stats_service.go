package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/repository"
	"context"
)

// StatsEvent post.stats 主题的负载
type StatsEvent struct {
	PostID string      `json:"postId"`
	Stats  model.Stats `json:"stats"`
}

type StatsService interface {
	Get(ctx context.Context, postID string, base model.Stats) model.Stats
	GetForPost(ctx context.Context, postID string) (model.Stats, error)
	Increment(ctx context.Context, postID, field string, delta int64) (model.Stats, error)
	SetReplies(ctx context.Context, postID string, count int64) (model.Stats, error)
	RecordView(ctx context.Context, postID string) (model.Stats, error)
}

type StatsServiceImpl struct {
	statsRepo repository.PostStatsRepo
	postRepo  repository.PostRepo
	bus       *event.Bus
}

func NewStatsService(statsRepo repository.PostStatsRepo, postRepo repository.PostRepo, bus *event.Bus) StatsService {
	return &StatsServiceImpl{statsRepo: statsRepo, postRepo: postRepo, bus: bus}
}

func (s *StatsServiceImpl) Get(ctx context.Context, postID string, base model.Stats) model.Stats {
	return s.statsRepo.Get(ctx, postID).Merge(base)
}

func (s *StatsServiceImpl) base(ctx context.Context, postID string) (model.Stats, error) {
	if postID == "" {
		return model.Stats{}, ErrParamInvalid
	}
	if isTombstoned(ctx, s.postRepo, postID) {
		return model.Stats{}, ErrPostNotFound
	}
	post := findPost(ctx, s.postRepo, postID)
	if post == nil {
		return model.Stats{}, nil
	}
	return post.BaseStats(), nil
}

func (s *StatsServiceImpl) GetForPost(ctx context.Context, postID string) (model.Stats, error) {
	base, err := s.base(ctx, postID)
	if err != nil {
		return model.Stats{}, err
	}
	return s.Get(ctx, postID, base), nil
}

// Increment 在当前有效值上累加，结果截断为不小于 0
func (s *StatsServiceImpl) Increment(ctx context.Context, postID, field string, delta int64) (model.Stats, error) {
	if !model.ValidStatField(field) {
		return model.Stats{}, ErrStatFieldInvalid
	}
	base, err := s.base(ctx, postID)
	if err != nil {
		return model.Stats{}, err
	}
	return s.write(ctx, postID, base, func(o model.StatsOverride) {
		o[field] = max(o.Merge(base).Field(field)+delta, 0)
	})
}

func (s *StatsServiceImpl) SetReplies(ctx context.Context, postID string, count int64) (model.Stats, error) {
	base, err := s.base(ctx, postID)
	if err != nil {
		return model.Stats{}, err
	}
	return s.write(ctx, postID, base, func(o model.StatsOverride) {
		o[model.StatReplies] = max(count, 0)
	})
}

func (s *StatsServiceImpl) RecordView(ctx context.Context, postID string) (model.Stats, error) {
	return s.Increment(ctx, postID, model.StatViews, 1)
}

func (s *StatsServiceImpl) write(ctx context.Context, postID string, base model.Stats, fn func(o model.StatsOverride)) (model.Stats, error) {
	o, err := s.statsRepo.Update(ctx, postID, func(o model.StatsOverride) error {
		fn(o)
		return nil
	})
	if err != nil {
		return model.Stats{}, err
	}
	stats := o.Merge(base)
	s.bus.Publish(ctx, consts.TopicPostStats, postID, &StatsEvent{PostID: postID, Stats: stats})
	return stats, nil
}
