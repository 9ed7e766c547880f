package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/metrics"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"
)

// MetaEdit 头衔/角色修改；修改他人时需要管理员密钥
type MetaEdit struct {
	Title    *string
	Role     *string
	AdminKey string
}

type ModerationService interface {
	GetMeta(ctx context.Context, userID string) *model.AdminMeta
	Restrictions(ctx context.Context, userID string) model.Restrictions
	IsAdmin(ctx context.Context, userID string) bool
	TagInfo(ctx context.Context, userID string) *model.TagInfo
	VerifyAdminKey(candidate string) bool
	SetMuted(ctx context.Context, actorID, targetID string, muted bool) (*model.AdminMeta, error)
	SetBanned(ctx context.Context, actorID, targetID string, banned bool) (*model.AdminMeta, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error
	EditMeta(ctx context.Context, actorID, targetID string, edit MetaEdit) (*model.AdminMeta, error)
	Report(ctx context.Context, reporterID, targetID string) error
	Touch(ctx context.Context, userID string)
}

type ModerationServiceImpl struct {
	adminMetaRepo repository.AdminMetaRepo
	followRepo    repository.FollowRepo
	blockRepo     repository.BlockRepo
	access        *accessChecker
	postService   PostService
	adminKey      string
}

func NewModerationService(
	adminMetaRepo repository.AdminMetaRepo,
	accountRepo repository.AccountRepo,
	followRepo repository.FollowRepo,
	blockRepo repository.BlockRepo,
	postService PostService,
	adminKey string,
) ModerationService {
	return &ModerationServiceImpl{
		adminMetaRepo: adminMetaRepo,
		followRepo:    followRepo,
		blockRepo:     blockRepo,
		access:        newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
		postService:   postService,
		adminKey:      adminKey,
	}
}

func (s *ModerationServiceImpl) GetMeta(ctx context.Context, userID string) *model.AdminMeta {
	return s.adminMetaRepo.Read(ctx, userID)
}

func (s *ModerationServiceImpl) Restrictions(ctx context.Context, userID string) model.Restrictions {
	return s.access.restrictions(ctx, userID)
}

func (s *ModerationServiceImpl) IsAdmin(ctx context.Context, userID string) bool {
	return s.access.isAdmin(ctx, userID)
}

func (s *ModerationServiceImpl) TagInfo(ctx context.Context, userID string) *model.TagInfo {
	legacy := false
	if acc := s.access.account(ctx, userID); acc != nil {
		legacy = acc.IsAdmin
	}
	return model.BuildTagInfo(legacy, s.adminMetaRepo.Read(ctx, userID))
}

func (s *ModerationServiceImpl) VerifyAdminKey(candidate string) bool {
	return security.SecretEqual(candidate, s.adminKey)
}

// guard 操作者必须是管理员，目标不能是管理员
func (s *ModerationServiceImpl) guard(ctx context.Context, actorID, targetID string) error {
	if targetID == "" {
		return ErrParamInvalid
	}
	if !s.access.isAdmin(ctx, actorID) {
		return UnauthorizedError
	}
	if s.access.isAdmin(ctx, targetID) {
		return ErrNoPermissionOverAdmin
	}
	return nil
}

func (s *ModerationServiceImpl) SetMuted(ctx context.Context, actorID, targetID string, muted bool) (*model.AdminMeta, error) {
	meta, err := s.toggle(ctx, actorID, targetID, func(m *model.AdminMeta) {
		if muted && !m.IsMuted {
			m.MuteCount++
		}
		m.IsMuted = muted
	})
	metrics.ModerationActions.WithLabelValues("mute", metrics.Result(err)).Inc()
	return meta, err
}

func (s *ModerationServiceImpl) SetBanned(ctx context.Context, actorID, targetID string, banned bool) (*model.AdminMeta, error) {
	meta, err := s.toggle(ctx, actorID, targetID, func(m *model.AdminMeta) {
		if banned && !m.IsBanned {
			m.BanCount++
		}
		m.IsBanned = banned
	})
	metrics.ModerationActions.WithLabelValues("ban", metrics.Result(err)).Inc()
	return meta, err
}

func (s *ModerationServiceImpl) toggle(ctx context.Context, actorID, targetID string, fn func(m *model.AdminMeta)) (*model.AdminMeta, error) {
	if err := s.guard(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	meta, err := s.adminMetaRepo.Update(ctx, targetID, func(m *model.AdminMeta) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		fn(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "moderation state changed", "actor", actorID, "target", targetID,
		"muted", meta.IsMuted, "banned", meta.IsBanned)
	return meta, nil
}

// DeleteUser 清除管理元数据、关注关系和拉黑列表；账户本身保留
func (s *ModerationServiceImpl) DeleteUser(ctx context.Context, actorID, targetID string) (err error) {
	defer func() {
		metrics.ModerationActions.WithLabelValues("delete", metrics.Result(err)).Inc()
	}()
	if err = s.guard(ctx, actorID, targetID); err != nil {
		return err
	}
	if err = s.adminMetaRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	if err = s.followRepo.RemoveUser(ctx, targetID); err != nil {
		return err
	}
	if err = s.blockRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	log.InfoContext(ctx, "user moderation data deleted", "actor", actorID, "target", targetID)
	return nil
}

// EditMeta 修改他人需要密钥，修改自己不需要；完成后同步帖子里的作者徽章
func (s *ModerationServiceImpl) EditMeta(ctx context.Context, actorID, targetID string, edit MetaEdit) (*model.AdminMeta, error) {
	if targetID == "" {
		return nil, ErrParamInvalid
	}
	if !s.access.isAdmin(ctx, actorID) {
		return nil, UnauthorizedError
	}
	if actorID != targetID && !s.VerifyAdminKey(edit.AdminKey) {
		metrics.ModerationActions.WithLabelValues("edit_meta", "bad_key").Inc()
		return nil, ErrAdminKeyIncorrect
	}
	if edit.Role != nil {
		role := strings.TrimSpace(*edit.Role)
		if role != "" && role != consts.RoleAdmin && role != consts.RoleUser {
			return nil, ErrRoleInvalid
		}
		edit.Role = &role
	}

	meta, err := s.adminMetaRepo.Update(ctx, targetID, func(m *model.AdminMeta) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		model.AdminMetaPatch{Title: trimmed(edit.Title), Role: edit.Role}.Apply(m)
		return nil
	})
	metrics.ModerationActions.WithLabelValues("edit_meta", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	if snap := s.access.snapshot(ctx, targetID); snap != nil {
		if _, err := s.postService.UpdateAuthorSnapshot(ctx, *snap); err != nil {
			log.WarnContext(ctx, "propagate author tag failed", "user_id", targetID, "err", err)
		}
	}
	return meta, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *ModerationServiceImpl) Report(ctx context.Context, reporterID, targetID string) error {
	if reporterID == "" || targetID == "" {
		return ErrParamInvalid
	}
	if reporterID == targetID {
		return ErrReportSelf
	}
	if _, err := s.adminMetaRepo.Update(ctx, targetID, func(m *model.AdminMeta) error {
		m.ReportsReceived++
		return nil
	}); err != nil {
		return err
	}
	_, err := s.adminMetaRepo.Update(ctx, reporterID, func(m *model.AdminMeta) error {
		m.ReportsSubmitted++
		return nil
	})
	metrics.ModerationActions.WithLabelValues("report", metrics.Result(err)).Inc()
	return err
}

// Touch 尽力更新 lastActiveAt，失败只记录日志
func (s *ModerationServiceImpl) Touch(ctx context.Context, userID string) {
	touchLastActive(ctx, s.adminMetaRepo, userID)
}

func touchLastActive(ctx context.Context, repo repository.AdminMetaRepo, userID string) {
	if userID == "" {
		return
	}
	now := time.Now()
	_, err := repo.Update(ctx, userID, func(m *model.AdminMeta) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.LastActiveAt = now
		return nil
	})
	if err != nil {
		log.WarnContext(ctx, "touch last active failed", "user_id", userID, "err", err)
	}
}
