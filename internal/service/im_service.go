package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/repository"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IMService interface {
	Send(ctx context.Context, fromID, toID, content string) (*model.Message, error)
	Recall(ctx context.Context, actorID, peerID, messageID string) (*model.Message, error)
	Delete(ctx context.Context, actorID, peerID, messageID string) error
	History(ctx context.Context, viewerID, peerID string) ([]*model.Message, error)
	Threads(ctx context.Context, viewerID string) ([]*model.Thread, error)
}

type IMServiceImpl struct {
	messageRepo repository.MessageRepo
	access      *accessChecker
}

func NewIMService(messageRepo repository.MessageRepo, accountRepo repository.AccountRepo, adminMetaRepo repository.AdminMetaRepo, blockRepo repository.BlockRepo) IMService {
	return &IMServiceImpl{
		messageRepo: messageRepo,
		access:      newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
	}
}

// Send 任一方向存在拉黑关系、发送者被禁言或封禁时拒绝
func (s *IMServiceImpl) Send(ctx context.Context, fromID, toID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if fromID == "" || toID == "" {
		return nil, ErrParamInvalid
	}
	if fromID == toID {
		return nil, ErrMessageSelf
	}
	if err := s.access.canPublish(ctx, fromID); err != nil {
		return nil, err
	}
	if s.access.hasBlockRelation(ctx, fromID, toID) {
		return nil, ErrBlocked
	}
	sender := s.access.account(ctx, fromID)
	if sender == nil {
		return nil, ErrUserNotFound
	}
	receiver := s.access.account(ctx, toID)
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msg := &model.Message{
		ID:         uuid.NewString(),
		From:       fromID,
		To:         toID,
		FromName:   sender.DisplayName(),
		FromAvatar: sender.Profile.Avatar,
		ToName:     receiver.DisplayName(),
		ToAvatar:   receiver.Profile.Avatar,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	_, err := s.messageRepo.Update(ctx, fromID, toID, func(msgs []*model.Message) ([]*model.Message, error) {
		return append(msgs, msg), nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func findMessage(msgs []*model.Message, id string) *model.Message {
	for _, m := range msgs {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}

// Recall 仅发送者可撤回，保留 ID 与元数据
func (s *IMServiceImpl) Recall(ctx context.Context, actorID, peerID, messageID string) (*model.Message, error) {
	var recalled *model.Message
	_, err := s.messageRepo.Update(ctx, actorID, peerID, func(msgs []*model.Message) ([]*model.Message, error) {
		m := findMessage(msgs, messageID)
		if m == nil {
			return nil, ErrMessageNotFound
		}
		if m.From != actorID {
			return nil, ErrNotMessageSender
		}
		m.Content = consts.RecalledMessage
		m.Recalled = true
		recalled = m
		return msgs, nil
	})
	if err != nil {
		return nil, err
	}
	return recalled, nil
}

// Delete 仅发送者可删除
func (s *IMServiceImpl) Delete(ctx context.Context, actorID, peerID, messageID string) error {
	_, err := s.messageRepo.Update(ctx, actorID, peerID, func(msgs []*model.Message) ([]*model.Message, error) {
		m := findMessage(msgs, messageID)
		if m == nil {
			return nil, ErrMessageNotFound
		}
		if m.From != actorID {
			return nil, ErrNotMessageSender
		}
		kept := make([]*model.Message, 0, len(msgs))
		for _, x := range msgs {
			if x != nil && x.ID != messageID {
				kept = append(kept, x)
			}
		}
		return kept, nil
	})
	return err
}

func (s *IMServiceImpl) History(ctx context.Context, viewerID, peerID string) ([]*model.Message, error) {
	if viewerID == "" || peerID == "" {
		return nil, ErrParamInvalid
	}
	if s.access.hasBlockRelation(ctx, viewerID, peerID) {
		return []*model.Message{}, nil
	}
	return s.messageRepo.History(ctx, viewerID, peerID), nil
}

// Threads 按最后一条消息时间倒序，隐藏存在拉黑关系的会话
func (s *IMServiceImpl) Threads(ctx context.Context, viewerID string) ([]*model.Thread, error) {
	convs, err := s.messageRepo.Conversations(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blocked := s.access.blockedSet(ctx, viewerID)
	threads := make([]*model.Thread, 0, len(convs))
	for peer, msgs := range convs {
		if len(msgs) == 0 || blocked(peer) {
			continue
		}
		last := msgs[len(msgs)-1]
		t := &model.Thread{PeerID: peer, Last: last, Count: len(msgs)}
		if acc := s.access.account(ctx, peer); acc != nil {
			t.PeerName, t.PeerAvatar = acc.DisplayName(), acc.Profile.Avatar
		} else if last.From == peer {
			t.PeerName, t.PeerAvatar = last.FromName, last.FromAvatar
		} else {
			t.PeerName, t.PeerAvatar = last.ToName, last.ToAvatar
		}
		threads = append(threads, t)
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Last.CreatedAt.After(threads[j].Last.CreatedAt)
	})
	return threads, nil
}
