package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/repository"
	"context"
)

// ActionResult 点赞/收藏切换后的状态
type ActionResult struct {
	Active bool        `json:"active"`
	Stats  model.Stats `json:"stats"`
}

type PostActionService interface {
	ToggleLike(ctx context.Context, userID, postID string) (*ActionResult, error)
	ToggleFavorite(ctx context.Context, userID, postID string) (*ActionResult, error)
	Liked(ctx context.Context, userID string) ([]string, error)
	Favorited(ctx context.Context, userID string) ([]string, error)
	State(ctx context.Context, userID, postID string) (liked bool, favorited bool, err error)
}

type PostActionServiceImpl struct {
	actionRepo   repository.PostActionRepo
	postRepo     repository.PostRepo
	statsService StatsService
}

func NewPostActionService(actionRepo repository.PostActionRepo, postRepo repository.PostRepo, statsService StatsService) PostActionService {
	return &PostActionServiceImpl{actionRepo: actionRepo, postRepo: postRepo, statsService: statsService}
}

func (s *PostActionServiceImpl) toggle(ctx context.Context, kind, field, userID, postID string) (*ActionResult, error) {
	if userID == "" || postID == "" {
		return nil, ErrParamInvalid
	}
	if isTombstoned(ctx, s.postRepo, postID) || findPost(ctx, s.postRepo, postID) == nil {
		return nil, ErrPostNotFound
	}
	active, err := s.actionRepo.Toggle(ctx, kind, userID, postID)
	if err != nil {
		return nil, err
	}
	delta := int64(-1)
	if active {
		delta = 1
	}
	stats, err := s.statsService.Increment(ctx, postID, field, delta)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Active: active, Stats: stats}, nil
}

func (s *PostActionServiceImpl) ToggleLike(ctx context.Context, userID, postID string) (*ActionResult, error) {
	return s.toggle(ctx, repository.ActionLike, model.StatLikes, userID, postID)
}

func (s *PostActionServiceImpl) ToggleFavorite(ctx context.Context, userID, postID string) (*ActionResult, error) {
	return s.toggle(ctx, repository.ActionFavorite, model.StatFavorites, userID, postID)
}

func (s *PostActionServiceImpl) Liked(ctx context.Context, userID string) ([]string, error) {
	return s.actionRepo.List(ctx, repository.ActionLike, userID)
}

func (s *PostActionServiceImpl) Favorited(ctx context.Context, userID string) ([]string, error) {
	return s.actionRepo.List(ctx, repository.ActionFavorite, userID)
}

func (s *PostActionServiceImpl) State(ctx context.Context, userID, postID string) (bool, bool, error) {
	liked, err := s.actionRepo.Has(ctx, repository.ActionLike, userID, postID)
	if err != nil {
		return false, false, err
	}
	favorited, err := s.actionRepo.Has(ctx, repository.ActionFavorite, userID, postID)
	if err != nil {
		return false, false, err
	}
	return liked, favorited, nil
}
