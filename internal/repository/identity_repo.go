package repository

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	log "log/slog"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var seqIDRegex = regexp.MustCompile(`^[1-9][0-9]*$`)

// IdentityRepo 规范 ID 的分配与旧 ID 映射
type IdentityRepo interface {
	Allocate(ctx context.Context) (string, error)
	IsSupported(id string) bool
	Lookup(ctx context.Context, legacyID string) (string, bool)
	Resolve(ctx context.Context, id string) (string, error)
	RecordMapping(ctx context.Context, oldID, newID string) (string, error)
	Mappings(ctx context.Context) (map[string]string, error)
}

type IdentityRepoImpl struct {
	store    kv.Store
	strategy string
}

func NewIdentityRepo(store kv.Store, strategy string) IdentityRepo {
	if strategy != consts.IdentityStrategyUUID {
		strategy = consts.IdentityStrategySeq
	}
	return &IdentityRepoImpl{store: store, strategy: strategy}
}

// Allocate 分配新 ID，序号在存储中原子递增，永不复用
func (s *IdentityRepoImpl) Allocate(ctx context.Context) (string, error) {
	if s.strategy == consts.IdentityStrategyUUID {
		return uuid.NewString(), nil
	}
	var next int64
	err := kv.UpdateJSON(ctx, s.store, consts.UserSeqKey, func(cur *int64) error {
		if *cur < 0 {
			*cur = 0
		}
		*cur++
		next = *cur
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "allocate user id")
	}
	return strconv.FormatInt(next, 10), nil
}

// IsSupported 正整数序号（无前导 0）或 UUIDv4
func (s *IdentityRepoImpl) IsSupported(id string) bool {
	return IsSupportedID(id)
}

func IsSupportedID(id string) bool {
	if seqIDRegex.MatchString(id) {
		return true
	}
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	return err == nil && u.Version() == 4 && u.Variant() == uuid.RFC4122
}

// Lookup 读取失败按未找到处理
func (s *IdentityRepoImpl) Lookup(ctx context.Context, legacyID string) (string, bool) {
	m, err := s.Mappings(ctx)
	if err != nil {
		log.WarnContext(ctx, "read user_id_map failed, treat as unmapped", "err", err)
		return "", false
	}
	id, ok := m[legacyID]
	return id, ok && id != ""
}

func (s *IdentityRepoImpl) Resolve(ctx context.Context, id string) (string, error) {
	if s.IsSupported(id) {
		return id, nil
	}
	if mapped, ok := s.Lookup(ctx, id); ok {
		return mapped, nil
	}
	allocated, err := s.Allocate(ctx)
	if err != nil {
		return "", err
	}
	return s.RecordMapping(ctx, id, allocated)
}

// RecordMapping 先写者胜，返回实际生效的映射目标
func (s *IdentityRepoImpl) RecordMapping(ctx context.Context, oldID, newID string) (string, error) {
	if oldID == "" || s.IsSupported(oldID) {
		return "", errors.Errorf("refuse to remap supported id %q", oldID)
	}
	if !s.IsSupported(newID) {
		return "", errors.Errorf("mapping target %q is not a supported id", newID)
	}
	effective := newID
	err := kv.UpdateJSON(ctx, s.store, consts.UserIDMapKey, func(m *map[string]string) error {
		if *m == nil {
			*m = make(map[string]string)
		}
		if existing, ok := (*m)[oldID]; ok && existing != "" {
			effective = existing
			return kv.ErrSkip
		}
		effective = newID
		(*m)[oldID] = newID
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "record id mapping")
	}
	return effective, nil
}

func (s *IdentityRepoImpl) Mappings(ctx context.Context) (map[string]string, error) {
	m := make(map[string]string)
	if _, err := kv.GetJSON(ctx, s.store, consts.UserIDMapKey, &m); err != nil {
		return nil, err
	}
	return m, nil
}
