package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"context"
	log "log/slog"
)

// PostList 对帖子列表的原子修改，返回 false 表示无需写入
type PostList func(posts []*model.Post) ([]*model.Post, bool, error)

// PostRepo local_posts / posts_cache / deleted_posts / pinned_posts
type PostRepo interface {
	Local(ctx context.Context) []*model.Post
	Cached(ctx context.Context) []*model.Post
	UpdateLocal(ctx context.Context, fn PostList) error
	UpdateCache(ctx context.Context, fn PostList) error
	Tombstones(ctx context.Context) map[string]struct{}
	AddTombstone(ctx context.Context, postID string) error
	PinnedIDs(ctx context.Context) map[string]struct{}
	SetPinned(ctx context.Context, postID string, pinned bool) error
}

type PostRepoImpl struct {
	store kv.Store
}

func NewPostRepo(store kv.Store) PostRepo {
	return &PostRepoImpl{store: store}
}

func (s *PostRepoImpl) readPosts(ctx context.Context, key string) []*model.Post {
	var posts []*model.Post
	if _, err := kv.GetJSON(ctx, s.store, key, &posts); err != nil {
		log.WarnContext(ctx, "read posts failed, treat as empty", "key", key, "err", err)
		return nil
	}
	out := posts[:0]
	for _, p := range posts {
		if p == nil || p.ID == "" {
			continue
		}
		p.Normalize()
		out = append(out, p)
	}
	return out
}

// Local 读取失败按空处理
func (s *PostRepoImpl) Local(ctx context.Context) []*model.Post {
	return s.readPosts(ctx, consts.LocalPostsKey)
}

func (s *PostRepoImpl) Cached(ctx context.Context) []*model.Post {
	return s.readPosts(ctx, consts.PostsCacheKey)
}

func (s *PostRepoImpl) updatePosts(ctx context.Context, key string, fn PostList) error {
	return kv.UpdateJSON(ctx, s.store, key, func(posts *[]*model.Post) error {
		next, changed, err := fn(*posts)
		if err != nil {
			return err
		}
		if !changed {
			return kv.ErrSkip
		}
		*posts = next
		return nil
	})
}

func (s *PostRepoImpl) UpdateLocal(ctx context.Context, fn PostList) error {
	return s.updatePosts(ctx, consts.LocalPostsKey, fn)
}

func (s *PostRepoImpl) UpdateCache(ctx context.Context, fn PostList) error {
	return s.updatePosts(ctx, consts.PostsCacheKey, fn)
}

func (s *PostRepoImpl) idSet(ctx context.Context, key string) map[string]struct{} {
	var ids []string
	if _, err := kv.GetJSON(ctx, s.store, key, &ids); err != nil {
		log.WarnContext(ctx, "read id set failed, treat as empty", "key", key, "err", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *PostRepoImpl) Tombstones(ctx context.Context) map[string]struct{} {
	return s.idSet(ctx, consts.DeletedPostsKey)
}

// AddTombstone 墓碑永久有效，重复添加无副作用
func (s *PostRepoImpl) AddTombstone(ctx context.Context, postID string) error {
	return kv.UpdateJSON(ctx, s.store, consts.DeletedPostsKey, func(ids *[]string) error {
		if util.Contains(*ids, postID) {
			return kv.ErrSkip
		}
		*ids = append(*ids, postID)
		return nil
	})
}

func (s *PostRepoImpl) PinnedIDs(ctx context.Context) map[string]struct{} {
	return s.idSet(ctx, consts.PinnedPostsKey)
}

func (s *PostRepoImpl) SetPinned(ctx context.Context, postID string, pinned bool) error {
	return kv.UpdateJSON(ctx, s.store, consts.PinnedPostsKey, func(ids *[]string) error {
		has := util.Contains(*ids, postID)
		switch {
		case pinned && !has:
			*ids = append(*ids, postID)
		case !pinned && has:
			*ids = util.Remove(*ids, postID)
		default:
			return kv.ErrSkip
		}
		return nil
	})
}
