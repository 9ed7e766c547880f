package service

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/metrics"
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
)

// Rename 一次身份迁移
type Rename struct {
	OldID       string `json:"oldId"`
	NewID       string `json:"newId"`
	DisplayName string `json:"displayName"`
}

// Namespace 可迁移的数据命名空间，Rekey 必须可重复执行
type Namespace interface {
	Name() string
	Rekey(ctx context.Context, r Rename) error
}

type namespaceFunc struct {
	name string
	fn   func(ctx context.Context, r Rename) error
}

func (n namespaceFunc) Name() string { return n.name }

func (n namespaceFunc) Rekey(ctx context.Context, r Rename) error { return n.fn(ctx, r) }

type MigrationService interface {
	Migrate(ctx context.Context, oldID, newID, displayName string) error
	Namespaces() []string
}

type MigrationServiceImpl struct {
	identityRepo repository.IdentityRepo
	namespaces   []Namespace
	bus          *event.Bus
}

func NewMigrationService(
	identityRepo repository.IdentityRepo,
	actionRepo repository.PostActionRepo,
	adminMetaRepo repository.AdminMetaRepo,
	accountRepo repository.AccountRepo,
	blockRepo repository.BlockRepo,
	messageRepo repository.MessageRepo,
	followRepo repository.FollowRepo,
	replyRepo repository.ReplyRepo,
	postService PostService,
	bus *event.Bus,
) MigrationService {
	access := newAccessChecker(accountRepo, adminMetaRepo, blockRepo)
	rekey := func(fn func(ctx context.Context, oldID, newID string) error) func(context.Context, Rename) error {
		return func(ctx context.Context, r Rename) error { return fn(ctx, r.OldID, r.NewID) }
	}
	// 顺序固定：按用户分键的记录 -> 私信 -> 关注图 -> 回复 -> 帖子作者
	namespaces := []Namespace{
		namespaceFunc{"actions", rekey(actionRepo.Rekey)},
		namespaceFunc{"admin_meta", rekey(adminMetaRepo.Rekey)},
		namespaceFunc{"block_list", rekey(blockRepo.Rekey)},
		namespaceFunc{"dm", rekey(messageRepo.Rekey)},
		namespaceFunc{"follow_graph", rekey(followRepo.Rekey)},
		namespaceFunc{"local_replies", rekey(replyRepo.RekeyAuthor)},
		namespaceFunc{"posts", func(ctx context.Context, r Rename) error {
			if err := postService.RekeyAuthor(ctx, r.OldID, r.NewID); err != nil {
				return err
			}
			snap := access.snapshot(ctx, r.NewID)
			if snap == nil {
				log.DebugContext(ctx, "no account for migrated id, author snapshots keep old fields", "new_id", r.NewID)
				return nil
			}
			if r.DisplayName != "" {
				snap.Name = r.DisplayName
			}
			_, err := postService.UpdateAuthorSnapshot(ctx, *snap)
			return err
		}},
	}
	return &MigrationServiceImpl{identityRepo: identityRepo, namespaces: namespaces, bus: bus}
}

func (s *MigrationServiceImpl) Namespaces() []string {
	names := make([]string, 0, len(s.namespaces))
	for _, ns := range s.namespaces {
		names = append(names, ns.Name())
	}
	return names
}

// Migrate 非原子：中途失败后用相同参数重跑即可
func (s *MigrationServiceImpl) Migrate(ctx context.Context, oldID, newID, displayName string) (err error) {
	if oldID == "" || newID == "" {
		return ErrParamInvalid
	}
	if oldID == newID {
		return nil
	}
	defer func() {
		metrics.MigrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if !repository.IsSupportedID(oldID) {
		effective, err := s.identityRepo.RecordMapping(ctx, oldID, newID)
		if err != nil {
			return errors.Wrap(err, "record identity mapping")
		}
		if effective != newID {
			log.WarnContext(ctx, "legacy id already mapped elsewhere", "old_id", oldID, "new_id", newID, "mapped", effective)
		}
	}

	r := Rename{OldID: oldID, NewID: newID, DisplayName: displayName}
	start := time.Now()
	for _, ns := range s.namespaces {
		if err := ns.Rekey(ctx, r); err != nil {
			log.ErrorContext(ctx, "migration step failed", "namespace", ns.Name(), "old_id", oldID, "new_id", newID, "err", err)
			return errors.Wrapf(err, "migrate %s", ns.Name())
		}
	}
	log.InfoContext(ctx, "identity migrated", "old_id", oldID, "new_id", newID, "cost", time.Since(start))
	s.bus.Publish(ctx, consts.TopicUserMigrated, newID, &r)
	return nil
}
