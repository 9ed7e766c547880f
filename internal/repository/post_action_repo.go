package repository

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"context"
)

const (
	ActionLike     = "likes"
	ActionFavorite = "favorites"
)

// PostActionRepo likes:{userId} / favorites:{userId}，值为帖子 ID 列表
type PostActionRepo interface {
	Toggle(ctx context.Context, kind, userID, postID string) (bool, error)
	Has(ctx context.Context, kind, userID, postID string) (bool, error)
	List(ctx context.Context, kind, userID string) ([]string, error)
	RemovePost(ctx context.Context, postID string) error
	Rekey(ctx context.Context, oldID, newID string) error
}

type PostActionRepoImpl struct {
	store kv.Store
}

func NewPostActionRepo(store kv.Store) PostActionRepo {
	return &PostActionRepoImpl{store: store}
}

func actionKey(kind, userID string) string {
	if kind == ActionFavorite {
		return consts.FavoritesKey + userID
	}
	return consts.LikesKey + userID
}

func (s *PostActionRepoImpl) Toggle(ctx context.Context, kind, userID, postID string) (bool, error) {
	var active bool
	err := kv.UpdateJSON(ctx, s.store, actionKey(kind, userID), func(list *[]string) error {
		if util.Contains(*list, postID) {
			*list = util.Remove(*list, postID)
			active = false
		} else {
			*list = append(*list, postID)
			active = true
		}
		return nil
	})
	return active, err
}

func (s *PostActionRepoImpl) Has(ctx context.Context, kind, userID, postID string) (bool, error) {
	list, err := s.List(ctx, kind, userID)
	if err != nil {
		return false, err
	}
	return util.Contains(list, postID), nil
}

func (s *PostActionRepoImpl) List(ctx context.Context, kind, userID string) ([]string, error) {
	var list []string
	if _, err := kv.GetJSON(ctx, s.store, actionKey(kind, userID), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return util.Unique(list), nil
}

// RemovePost 帖子删除后从所有用户的点赞/收藏中移除
func (s *PostActionRepoImpl) RemovePost(ctx context.Context, postID string) error {
	for _, prefix := range []string{consts.LikesKey, consts.FavoritesKey} {
		keys, err := s.store.Keys(ctx, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			err := kv.UpdateJSON(ctx, s.store, key, func(list *[]string) error {
				if !util.Contains(*list, postID) {
					return kv.ErrSkip
				}
				*list = util.Remove(*list, postID)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *PostActionRepoImpl) Rekey(ctx context.Context, oldID, newID string) error {
	for _, kind := range []string{ActionLike, ActionFavorite} {
		if err := MoveKey(ctx, s.store, actionKey(kind, oldID), actionKey(kind, newID)); err != nil {
			return err
		}
	}
	return nil
}
