package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
)

// accessChecker 汇总各服务共用的权限与可见性判断
type accessChecker struct {
	accountRepo   repository.AccountRepo
	adminMetaRepo repository.AdminMetaRepo
	blockRepo     repository.BlockRepo
}

func newAccessChecker(accountRepo repository.AccountRepo, adminMetaRepo repository.AdminMetaRepo, blockRepo repository.BlockRepo) *accessChecker {
	return &accessChecker{accountRepo: accountRepo, adminMetaRepo: adminMetaRepo, blockRepo: blockRepo}
}

func (a *accessChecker) account(ctx context.Context, userID string) *model.Account {
	acc, err := a.accountRepo.GetByID(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "load account failed", "user_id", userID, "err", err)
		return nil
	}
	return acc
}

// isAdmin 角色优先，未设置角色时看账户的 isAdmin
func (a *accessChecker) isAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	legacy := false
	if acc := a.account(ctx, userID); acc != nil {
		legacy = acc.IsAdmin
	}
	return model.EffectiveAdmin(legacy, a.adminMetaRepo.Read(ctx, userID))
}

// isAdminWithSnapshot 账户不存在时退回快照里的 isAdmin
func (a *accessChecker) isAdminWithSnapshot(ctx context.Context, author *model.AuthorSnapshot) bool {
	legacy := author.IsAdmin
	if acc := a.account(ctx, author.ID); acc != nil {
		legacy = acc.IsAdmin
	}
	return model.EffectiveAdmin(legacy, a.adminMetaRepo.Read(ctx, author.ID))
}

func (a *accessChecker) restrictions(ctx context.Context, userID string) model.Restrictions {
	meta := a.adminMetaRepo.Read(ctx, userID)
	return model.Restrictions{IsMuted: meta.IsMuted, IsBanned: meta.IsBanned}
}

// canPublish 被封禁或禁言的用户不能发帖、回复、私信
func (a *accessChecker) canPublish(ctx context.Context, userID string) error {
	r := a.restrictions(ctx, userID)
	if r.IsBanned {
		return ErrUserBan
	}
	if r.IsMuted {
		return ErrUserMuted
	}
	return nil
}

// blockedSet 返回与 viewer 存在任一方向拉黑关系的用户判断函数
func (a *accessChecker) blockedSet(ctx context.Context, viewerID string) func(userID string) bool {
	if viewerID == "" {
		return func(string) bool { return false }
	}
	mine, err := a.blockRepo.List(ctx, viewerID)
	if err != nil {
		log.WarnContext(ctx, "read block list failed", "user_id", viewerID, "err", err)
	}
	blocked := make(map[string]struct{}, len(mine))
	for _, id := range mine {
		blocked[id] = struct{}{}
	}
	cache := make(map[string]bool)
	return func(userID string) bool {
		if userID == "" || userID == viewerID {
			return false
		}
		if _, ok := blocked[userID]; ok {
			return true
		}
		if v, ok := cache[userID]; ok {
			return v
		}
		v, err := a.blockRepo.IsBlocked(ctx, userID, viewerID)
		if err != nil {
			log.WarnContext(ctx, "read block list failed", "user_id", userID, "err", err)
		}
		cache[userID] = v
		return v
	}
}

func (a *accessChecker) hasBlockRelation(ctx context.Context, x, y string) bool {
	return a.blockedSet(ctx, x)(y)
}

// bannedSet 按作者缓存封禁状态
func (a *accessChecker) bannedSet(ctx context.Context) func(userID string) bool {
	cache := make(map[string]bool)
	return func(userID string) bool {
		if v, ok := cache[userID]; ok {
			return v
		}
		v := a.adminMetaRepo.Read(ctx, userID).IsBanned
		cache[userID] = v
		return v
	}
}

// snapshot 用账户资料和当前徽章生成作者快照，账户不存在时返回 nil
func (a *accessChecker) snapshot(ctx context.Context, userID string) *model.AuthorSnapshot {
	acc := a.account(ctx, userID)
	if acc == nil {
		return nil
	}
	snap := acc.Snapshot()
	meta := a.adminMetaRepo.Read(ctx, userID)
	snap.IsAdmin = model.EffectiveAdmin(acc.IsAdmin, meta)
	snap.TagInfo = model.BuildTagInfo(acc.IsAdmin, meta)
	return &snap
}
