package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	log "log/slog"
)

// ReplyRepo local_replies 文档：postId -> 回复列表
type ReplyRepo interface {
	List(ctx context.Context, postID string) []*model.Reply
	Update(ctx context.Context, postID string, fn func(replies []*model.Reply) ([]*model.Reply, error)) ([]*model.Reply, error)
	DeletePost(ctx context.Context, postID string) error
	RekeyAuthor(ctx context.Context, oldID, newID string) error
}

type ReplyRepoImpl struct {
	store kv.Store
}

func NewReplyRepo(store kv.Store) ReplyRepo {
	return &ReplyRepoImpl{store: store}
}

type replyDoc = map[string][]*model.Reply

func (s *ReplyRepoImpl) List(ctx context.Context, postID string) []*model.Reply {
	doc := make(replyDoc)
	if _, err := kv.GetJSON(ctx, s.store, consts.LocalRepliesKey, &doc); err != nil {
		log.WarnContext(ctx, "read replies failed, treat as empty", "err", err)
		return []*model.Reply{}
	}
	replies := make([]*model.Reply, 0, len(doc[postID]))
	for _, r := range doc[postID] {
		if r != nil {
			replies = append(replies, r)
		}
	}
	return replies
}

func (s *ReplyRepoImpl) Update(ctx context.Context, postID string, fn func(replies []*model.Reply) ([]*model.Reply, error)) ([]*model.Reply, error) {
	var result []*model.Reply
	err := kv.UpdateJSON(ctx, s.store, consts.LocalRepliesKey, func(doc *replyDoc) error {
		if *doc == nil {
			*doc = make(replyDoc)
		}
		next, err := fn((*doc)[postID])
		if err != nil {
			return err
		}
		if len(next) == 0 {
			delete(*doc, postID)
		} else {
			(*doc)[postID] = next
		}
		result = next
		return nil
	})
	return result, err
}

func (s *ReplyRepoImpl) DeletePost(ctx context.Context, postID string) error {
	return kv.UpdateJSON(ctx, s.store, consts.LocalRepliesKey, func(doc *replyDoc) error {
		if _, ok := (*doc)[postID]; !ok {
			return kv.ErrSkip
		}
		delete(*doc, postID)
		return nil
	})
}

// RekeyAuthor 替换全部回复中作者快照的 ID
func (s *ReplyRepoImpl) RekeyAuthor(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	return kv.UpdateJSON(ctx, s.store, consts.LocalRepliesKey, func(doc *replyDoc) error {
		changed := false
		for _, replies := range *doc {
			for _, r := range replies {
				if r != nil && r.Author.ID == oldID {
					r.Author.ID = newID
					changed = true
				}
			}
		}
		if !changed {
			return kv.ErrSkip
		}
		return nil
	})
}
