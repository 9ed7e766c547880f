package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	log "log/slog"
	"sort"
	"strings"
)

// MessageRepo dm:{较小ID}_{较大ID}，值为按时间排列的私信
type MessageRepo interface {
	History(ctx context.Context, a, b string) []*model.Message
	Update(ctx context.Context, a, b string, fn func(msgs []*model.Message) ([]*model.Message, error)) ([]*model.Message, error)
	// Conversations 返回 userID 参与的全部会话：对方 ID -> 消息
	Conversations(ctx context.Context, userID string) (map[string][]*model.Message, error)
	Rekey(ctx context.Context, oldID, newID string) error
}

type MessageRepoImpl struct {
	store kv.Store
}

func NewMessageRepo(store kv.Store) MessageRepo {
	return &MessageRepoImpl{store: store}
}

// ThreadKey 两个 ID 排序后拼接
func ThreadKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return consts.DMThreadKeyPrefix + pair[0] + "_" + pair[1]
}

func (s *MessageRepoImpl) read(ctx context.Context, key string) []*model.Message {
	var msgs []*model.Message
	if _, err := kv.GetJSON(ctx, s.store, key, &msgs); err != nil {
		log.WarnContext(ctx, "read dm thread failed, treat as empty", "key", key, "err", err)
		return []*model.Message{}
	}
	out := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (s *MessageRepoImpl) History(ctx context.Context, a, b string) []*model.Message {
	return s.read(ctx, ThreadKey(a, b))
}

func (s *MessageRepoImpl) Update(ctx context.Context, a, b string, fn func(msgs []*model.Message) ([]*model.Message, error)) ([]*model.Message, error) {
	var result []*model.Message
	err := kv.UpdateJSON(ctx, s.store, ThreadKey(a, b), func(msgs *[]*model.Message) error {
		next, err := fn(*msgs)
		if err != nil {
			return err
		}
		if len(next) == 0 {
			result = []*model.Message{}
			return kv.ErrDelete
		}
		*msgs = next
		result = next
		return nil
	})
	return result, err
}

// participants 优先从消息的 from/to 推断，消息为空时再拆分 Key
func participants(key string, msgs []*model.Message) (string, string, bool) {
	for _, m := range msgs {
		if m.From != "" && m.To != "" && ThreadKey(m.From, m.To) == key {
			return m.From, m.To, true
		}
	}
	rest := strings.TrimPrefix(key, consts.DMThreadKeyPrefix)
	if i := strings.Index(rest, "_"); i > 0 && i < len(rest)-1 {
		a, b := rest[:i], rest[i+1:]
		if ThreadKey(a, b) == key {
			return a, b, true
		}
	}
	return "", "", false
}

func (s *MessageRepoImpl) Conversations(ctx context.Context, userID string) (map[string][]*model.Message, error) {
	keys, err := s.store.Keys(ctx, consts.DMThreadKeyPrefix)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]*model.Message)
	for _, key := range keys {
		if !strings.Contains(key, userID) {
			continue
		}
		msgs := s.read(ctx, key)
		a, b, ok := participants(key, msgs)
		if !ok {
			continue
		}
		switch userID {
		case a:
			result[b] = msgs
		case b:
			result[a] = msgs
		}
	}
	return result, nil
}

// Rekey 把含 oldID 的会话合并进以 newID 重新排序后的 Key，按消息 ID 去重
func (s *MessageRepoImpl) Rekey(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	keys, err := s.store.Keys(ctx, consts.DMThreadKeyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.Contains(key, oldID) {
			continue
		}
		msgs := s.read(ctx, key)
		a, b, ok := participants(key, msgs)
		if !ok || (a != oldID && b != oldID) {
			continue
		}
		peer := b
		if b == oldID {
			peer = a
		}
		if peer == newID {
			// 与自己的会话没有意义
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
			continue
		}

		for _, m := range msgs {
			if m.From == oldID {
				m.From = newID
			}
			if m.To == oldID {
				m.To = newID
			}
		}
		_, err := s.Update(ctx, newID, peer, func(existing []*model.Message) ([]*model.Message, error) {
			return mergeMessages(existing, msgs), nil
		})
		if err != nil {
			return err
		}
		if key != ThreadKey(newID, peer) {
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergeMessages(existing, incoming []*model.Message) []*model.Message {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]*model.Message, 0, len(existing)+len(incoming))
	for _, list := range [][]*model.Message{existing, incoming} {
		for _, m := range list {
			if m == nil {
				continue
			}
			if _, ok := seen[m.ID]; ok && m.ID != "" {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
