package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReplyService interface {
	List(ctx context.Context, postID, viewerID string) ([]*model.Reply, error)
	Add(ctx context.Context, actorID, postID, content string, parentID *string) (*model.Reply, error)
	Delete(ctx context.Context, actorID, postID, replyID string) error
}

type ReplyServiceImpl struct {
	replyRepo    repository.ReplyRepo
	postRepo     repository.PostRepo
	access       *accessChecker
	statsService StatsService
}

func NewReplyService(
	replyRepo repository.ReplyRepo,
	postRepo repository.PostRepo,
	accountRepo repository.AccountRepo,
	adminMetaRepo repository.AdminMetaRepo,
	blockRepo repository.BlockRepo,
	statsService StatsService,
) ReplyService {
	return &ReplyServiceImpl{
		replyRepo:    replyRepo,
		postRepo:     postRepo,
		access:       newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
		statsService: statsService,
	}
}

func (s *ReplyServiceImpl) checkPost(ctx context.Context, postID string) error {
	if postID == "" {
		return ErrParamInvalid
	}
	if isTombstoned(ctx, s.postRepo, postID) || findPost(ctx, s.postRepo, postID) == nil {
		return ErrPostNotFound
	}
	return nil
}

// List 隐藏被封禁作者及与 viewer 存在拉黑关系的作者的回复
func (s *ReplyServiceImpl) List(ctx context.Context, postID, viewerID string) ([]*model.Reply, error) {
	if isTombstoned(ctx, s.postRepo, postID) {
		return []*model.Reply{}, nil
	}
	blocked := s.access.blockedSet(ctx, viewerID)
	banned := s.access.bannedSet(ctx)
	out := make([]*model.Reply, 0)
	for _, r := range s.replyRepo.List(ctx, postID) {
		if blocked(r.Author.ID) || banned(r.Author.ID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ReplyServiceImpl) Add(ctx context.Context, actorID, postID, content string, parentID *string) (*model.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentEmpty
	}
	if err := s.checkPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.access.canPublish(ctx, actorID); err != nil {
		return nil, err
	}
	author := s.access.snapshot(ctx, actorID)
	if author == nil {
		return nil, ErrUserNotFound
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	reply := &model.Reply{
		ID:        "reply-" + uuid.NewString(),
		Author:    *author,
		Content:   content,
		CreatedAt: time.Now(),
		ParentID:  parentID,
	}
	replies, err := s.replyRepo.Update(ctx, postID, func(replies []*model.Reply) ([]*model.Reply, error) {
		if parentID != nil {
			parent := findReply(replies, *parentID)
			if parent == nil {
				return nil, ErrReplyNotFound
			}
			reply.ReplyToName = parent.Author.Name
		}
		return append(replies, reply), nil
	})
	if err != nil {
		return nil, err
	}
	s.resync(ctx, postID, len(replies))
	return reply, nil
}

func findReply(replies []*model.Reply, id string) *model.Reply {
	for _, r := range replies {
		if r != nil && r.ID == id {
			return r
		}
	}
	return nil
}

// Delete 作者或管理员可删除，子回复一并删除
func (s *ReplyServiceImpl) Delete(ctx context.Context, actorID, postID, replyID string) error {
	if postID == "" || replyID == "" {
		return ErrParamInvalid
	}
	isAdmin := s.access.isAdmin(ctx, actorID)
	replies, err := s.replyRepo.Update(ctx, postID, func(replies []*model.Reply) ([]*model.Reply, error) {
		target := findReply(replies, replyID)
		if target == nil {
			return nil, ErrReplyNotFound
		}
		if target.Author.ID != actorID && !isAdmin {
			return nil, UnauthorizedError
		}
		doomed := map[string]struct{}{replyID: {}}
		for grew := true; grew; {
			grew = false
			for _, r := range replies {
				if r == nil || r.ParentID == nil {
					continue
				}
				if _, dead := doomed[r.ID]; dead {
					continue
				}
				if _, ok := doomed[*r.ParentID]; ok {
					doomed[r.ID] = struct{}{}
					grew = true
				}
			}
		}
		kept := make([]*model.Reply, 0, len(replies))
		for _, r := range replies {
			if r == nil {
				continue
			}
			if _, dead := doomed[r.ID]; !dead {
				kept = append(kept, r)
			}
		}
		return kept, nil
	})
	if err != nil {
		return err
	}
	s.resync(ctx, postID, len(replies))
	return nil
}

func (s *ReplyServiceImpl) resync(ctx context.Context, postID string, count int) {
	if _, err := s.statsService.SetReplies(ctx, postID, int64(count)); err != nil {
		log.WarnContext(ctx, "resync reply counter failed", "post_id", postID, "err", err)
	}
}
