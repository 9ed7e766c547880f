package repository

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"context"
	"strings"
)

// BlockRepo block_list:{blockerId}
type BlockRepo interface {
	Toggle(ctx context.Context, blockerID, targetID string) (bool, error)
	IsBlocked(ctx context.Context, blockerID, targetID string) (bool, error)
	List(ctx context.Context, blockerID string) ([]string, error)
	Delete(ctx context.Context, blockerID string) error
	Rekey(ctx context.Context, oldID, newID string) error
}

type BlockRepoImpl struct {
	store kv.Store
}

func NewBlockRepo(store kv.Store) BlockRepo {
	return &BlockRepoImpl{store: store}
}

func blockListKey(userID string) string {
	return consts.BlockListKey + userID
}

func (s *BlockRepoImpl) Toggle(ctx context.Context, blockerID, targetID string) (bool, error) {
	if blockerID == "" || targetID == "" || blockerID == targetID {
		return false, nil
	}
	var blocked bool
	err := kv.UpdateJSON(ctx, s.store, blockListKey(blockerID), func(list *[]string) error {
		if util.Contains(*list, targetID) {
			*list = util.Remove(*list, targetID)
			blocked = false
		} else {
			*list = append(*list, targetID)
			blocked = true
		}
		return nil
	})
	return blocked, err
}

func (s *BlockRepoImpl) IsBlocked(ctx context.Context, blockerID, targetID string) (bool, error) {
	if blockerID == "" || targetID == "" || blockerID == targetID {
		return false, nil
	}
	list, err := s.List(ctx, blockerID)
	if err != nil {
		return false, err
	}
	return util.Contains(list, targetID), nil
}

func (s *BlockRepoImpl) List(ctx context.Context, blockerID string) ([]string, error) {
	if blockerID == "" {
		return []string{}, nil
	}
	var list []string
	if _, err := kv.GetJSON(ctx, s.store, blockListKey(blockerID), &list); err != nil {
		return nil, err
	}
	list = util.Remove(util.Unique(list), blockerID)
	return list, nil
}

func (s *BlockRepoImpl) Delete(ctx context.Context, blockerID string) error {
	return s.store.Delete(ctx, blockListKey(blockerID))
}

// Rekey 迁移自己的拉黑列表，并替换他人列表中对 oldID 的引用
func (s *BlockRepoImpl) Rekey(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	if err := MoveKey(ctx, s.store, blockListKey(oldID), blockListKey(newID)); err != nil {
		return err
	}
	keys, err := s.store.Keys(ctx, consts.BlockListKey)
	if err != nil {
		return err
	}
	for _, key := range keys {
		owner := strings.TrimPrefix(key, consts.BlockListKey)
		err := kv.UpdateJSON(ctx, s.store, key, func(list *[]string) error {
			next, changed := replaceID(*list, oldID, newID)
			if util.Contains(next, owner) {
				next = util.Remove(next, owner)
				changed = true
			}
			if !changed {
				return kv.ErrSkip
			}
			*list = next
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
