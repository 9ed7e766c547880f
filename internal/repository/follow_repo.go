package repository

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"context"
	"sort"
)

// FollowRepo follow_graph 文档：被关注者 -> 粉丝列表
type FollowRepo interface {
	Toggle(ctx context.Context, followerID, targetID string) (bool, int, error)
	Count(ctx context.Context, targetID string) (int, error)
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	RemoveRelation(ctx context.Context, a, b string) error
	Followers(ctx context.Context, targetID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
	RemoveUser(ctx context.Context, userID string) error
	Rekey(ctx context.Context, oldID, newID string) error
}

type FollowRepoImpl struct {
	store kv.Store
}

func NewFollowRepo(store kv.Store) FollowRepo {
	return &FollowRepoImpl{store: store}
}

type followGraph = map[string][]string

func (s *FollowRepoImpl) graph(ctx context.Context) (followGraph, error) {
	g := make(followGraph)
	if _, err := kv.GetJSON(ctx, s.store, consts.FollowGraphKey, &g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *FollowRepoImpl) update(ctx context.Context, fn func(g followGraph) (bool, error)) error {
	return kv.UpdateJSON(ctx, s.store, consts.FollowGraphKey, func(g *followGraph) error {
		if *g == nil {
			*g = make(followGraph)
		}
		changed, err := fn(*g)
		if err != nil {
			return err
		}
		if !changed {
			return kv.ErrSkip
		}
		return nil
	})
}

// Toggle 自己关注自己时不做任何修改
func (s *FollowRepoImpl) Toggle(ctx context.Context, followerID, targetID string) (bool, int, error) {
	if followerID == "" || targetID == "" || followerID == targetID {
		count, err := s.Count(ctx, targetID)
		return false, count, err
	}
	var following bool
	var count int
	err := s.update(ctx, func(g followGraph) (bool, error) {
		followers := g[targetID]
		if util.Contains(followers, followerID) {
			followers = util.Remove(followers, followerID)
			following = false
		} else {
			followers = append(followers, followerID)
			following = true
		}
		if len(followers) == 0 {
			delete(g, targetID)
		} else {
			g[targetID] = followers
		}
		count = len(followers)
		return true, nil
	})
	return following, count, err
}

func (s *FollowRepoImpl) Count(ctx context.Context, targetID string) (int, error) {
	g, err := s.graph(ctx)
	if err != nil {
		return 0, err
	}
	return len(util.Unique(g[targetID])), nil
}

func (s *FollowRepoImpl) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == "" || followerID == targetID {
		return false, nil
	}
	g, err := s.graph(ctx)
	if err != nil {
		return false, err
	}
	return util.Contains(g[targetID], followerID), nil
}

// RemoveRelation 双向删除 a、b 之间的关注
func (s *FollowRepoImpl) RemoveRelation(ctx context.Context, a, b string) error {
	return s.update(ctx, func(g followGraph) (bool, error) {
		changed := removeEdge(g, a, b)
		if removeEdge(g, b, a) {
			changed = true
		}
		return changed, nil
	})
}

func removeEdge(g followGraph, targetID, followerID string) bool {
	followers, ok := g[targetID]
	if !ok || !util.Contains(followers, followerID) {
		return false
	}
	followers = util.Remove(followers, followerID)
	if len(followers) == 0 {
		delete(g, targetID)
	} else {
		g[targetID] = followers
	}
	return true
}

func (s *FollowRepoImpl) Followers(ctx context.Context, targetID string) ([]string, error) {
	g, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	return util.Unique(g[targetID]), nil
}

func (s *FollowRepoImpl) Following(ctx context.Context, userID string) ([]string, error) {
	g, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	var following []string
	for target, followers := range g {
		if target != userID && util.Contains(followers, userID) {
			following = append(following, target)
		}
	}
	sort.Strings(following)
	return following, nil
}

// RemoveUser 删除与 userID 相关的全部关注边
func (s *FollowRepoImpl) RemoveUser(ctx context.Context, userID string) error {
	return s.update(ctx, func(g followGraph) (bool, error) {
		changed := false
		if _, ok := g[userID]; ok {
			delete(g, userID)
			changed = true
		}
		for target := range g {
			if removeEdge(g, target, userID) {
				changed = true
			}
		}
		return changed, nil
	})
}

// Rekey 替换所有键与列表中的 oldID，合并重复并去掉自环
func (s *FollowRepoImpl) Rekey(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	return s.update(ctx, func(g followGraph) (bool, error) {
		changed := false
		if followers, ok := g[oldID]; ok {
			g[newID] = append(g[newID], followers...)
			delete(g, oldID)
			changed = true
		}
		for target, followers := range g {
			next, replaced := replaceID(followers, oldID, newID)
			if util.Contains(next, target) {
				next = util.Remove(next, target)
				replaced = true
			}
			if !replaced {
				continue
			}
			changed = true
			if len(next) == 0 {
				delete(g, target)
			} else {
				g[target] = next
			}
		}
		return changed, nil
	})
}
