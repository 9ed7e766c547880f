package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/metrics"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/pkg/util"
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Session 登录结果
type Session struct {
	Account *model.Account `json:"account"`
	Token   string         `json:"token"`
	IsNew   bool           `json:"isNew"`
}

// ProfilePatch nil 字段保持不变
type ProfilePatch struct {
	Name      *string
	Avatar    *string
	Cover     *string
	School    *string
	ClassName *string
	Email     *string
	Bio       *string
	Password  *string
}

// UserInfo 对外展示的用户资料
type UserInfo struct {
	ID        string         `json:"id"`
	LoginID   string         `json:"loginId"`
	Profile   model.Profile  `json:"profile"`
	IsAdmin   bool           `json:"isAdmin"`
	TagInfo   *model.TagInfo `json:"tagInfo,omitempty"`
	Followers int            `json:"followers"`
	IsMuted   bool           `json:"isMuted"`
	IsBanned  bool           `json:"isBanned"`
}

type AccountService interface {
	Login(ctx context.Context, loginID, password string) (*Session, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.Account, error)
	GetByID(ctx context.Context, userID string) (*model.Account, error)
	GetByLoginID(ctx context.Context, loginID string) (*model.Account, error)
	Info(ctx context.Context, userID string) (*UserInfo, error)
	List(ctx context.Context) ([]*model.Account, error)
	GrantAdmin(ctx context.Context, loginID string, admin bool) (*model.Account, error)
	EnsureCanonical(ctx context.Context, loginID string) (*model.Account, error)
}

type AccountServiceImpl struct {
	accountRepo      repository.AccountRepo
	identityRepo     repository.IdentityRepo
	adminMetaRepo    repository.AdminMetaRepo
	followRepo       repository.FollowRepo
	access           *accessChecker
	postService      PostService
	migrationService MigrationService
}

func NewAccountService(
	accountRepo repository.AccountRepo,
	identityRepo repository.IdentityRepo,
	adminMetaRepo repository.AdminMetaRepo,
	followRepo repository.FollowRepo,
	blockRepo repository.BlockRepo,
	postService PostService,
	migrationService MigrationService,
) AccountService {
	return &AccountServiceImpl{
		accountRepo:      accountRepo,
		identityRepo:     identityRepo,
		adminMetaRepo:    adminMetaRepo,
		followRepo:       followRepo,
		access:           newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
		postService:      postService,
		migrationService: migrationService,
	}
}

// Login 首次登录即注册；已有账户校验密码，旧账户没有密码时采用本次密码
func (s *AccountServiceImpl) Login(ctx context.Context, loginID, password string) (*Session, error) {
	// 带首尾空白的账号直接拒绝，不做 trim
	if !util.ValidLoginID(loginID) {
		metrics.LoginTotal.WithLabelValues("invalid").Inc()
		return nil, ErrLoginIDInvalid
	}
	if !util.ValidPassword(password) {
		metrics.LoginTotal.WithLabelValues("invalid").Inc()
		return nil, ErrPasswordTooShort
	}

	acc, err := s.accountRepo.Get(ctx, loginID)
	if err != nil {
		return nil, err
	}
	isNew := false
	if acc == nil {
		acc, isNew, err = s.register(ctx, loginID, password)
		if err != nil {
			return nil, err
		}
	}

	if !isNew {
		if acc.PasswordHash != "" {
			if err := security.CheckPasswordHash(password, acc.PasswordHash); err != nil {
				metrics.LoginTotal.WithLabelValues("bad_password").Inc()
				return nil, ErrPasswordIncorrect
			}
		} else if acc, err = s.adoptPassword(ctx, loginID, password); err != nil {
			return nil, err
		}
	}

	acc, err = s.ensureCanonical(ctx, acc)
	if err != nil {
		return nil, err
	}
	touchLastActive(ctx, s.adminMetaRepo, acc.ID)

	roles := []string{}
	if s.access.isAdmin(ctx, acc.ID) {
		roles = append(roles, consts.ClaimRoleAdmin)
	}
	token, err := security.GenerateToken(acc.ID, acc.LoginID, roles)
	if err != nil {
		return nil, err
	}
	if isNew {
		metrics.LoginTotal.WithLabelValues("new").Inc()
	} else {
		metrics.LoginTotal.WithLabelValues("ok").Inc()
	}
	return &Session{Account: acc, Token: token, IsNew: isNew}, nil
}

// register 并发注册同一账号时，后到者按已有账户处理
func (s *AccountServiceImpl) register(ctx context.Context, loginID, password string) (*model.Account, bool, error) {
	id, err := s.identityRepo.Allocate(ctx)
	if err != nil {
		return nil, false, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	created := false
	acc, err := s.accountRepo.Update(ctx, loginID, func(acc *model.Account, exists bool) error {
		if exists {
			created = false
			return kv.ErrSkip
		}
		now := time.Now()
		acc.ID = id
		acc.PasswordHash = hash
		acc.CreatedAt = now
		acc.UpdatedAt = now
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		log.InfoContext(ctx, "account created", "login_id", loginID, "user_id", id)
	}
	return acc, created, nil
}

func (s *AccountServiceImpl) adoptPassword(ctx context.Context, loginID, password string) (*model.Account, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.Update(ctx, loginID, func(acc *model.Account, exists bool) error {
		if !exists {
			return ErrUserNotFound
		}
		acc.PasswordHash = hash
		acc.UpdatedAt = time.Now()
		return nil
	})
}

func (s *AccountServiceImpl) EnsureCanonical(ctx context.Context, loginID string) (*model.Account, error) {
	acc, err := s.accountRepo.Get(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrUserNotFound
	}
	return s.ensureCanonical(ctx, acc)
}

// ensureCanonical 旧版账户的 ID 可能是昵称编码或为空，解析为规范 ID 后迁移数据
func (s *AccountServiceImpl) ensureCanonical(ctx context.Context, acc *model.Account) (*model.Account, error) {
	current := acc.ID
	if current == "" {
		current = util.LegacyUserID(acc.Profile.Name, acc.LoginID)
	}
	var canonical string
	var err error
	// 昵称恰好形如规范 ID 时不能直接占用，也不迁移该 ID 下的数据
	borrowed := acc.ID == "" && s.identityRepo.IsSupported(current)
	if borrowed {
		canonical, err = s.identityRepo.Allocate(ctx)
	} else {
		canonical, err = s.identityRepo.Resolve(ctx, current)
	}
	if err != nil {
		return nil, err
	}
	if canonical == acc.ID {
		return acc, nil
	}

	updated, err := s.accountRepo.Update(ctx, acc.LoginID, func(a *model.Account, exists bool) error {
		if !exists {
			return ErrUserNotFound
		}
		a.ID = canonical
		a.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if current != canonical && !borrowed {
		if err := s.migrationService.Migrate(ctx, current, canonical, updated.DisplayName()); err != nil {
			log.ErrorContext(ctx, "identity migration incomplete, rerun to finish", "old_id", current, "new_id", canonical, "err", err)
		}
	}
	return updated, nil
}

func applyProfile(acc *model.Account, patch ProfilePatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&acc.Profile.Name, patch.Name)
	set(&acc.Profile.Avatar, patch.Avatar)
	set(&acc.Profile.Cover, patch.Cover)
	set(&acc.Profile.School, patch.School)
	set(&acc.Profile.ClassName, patch.ClassName)
	set(&acc.Profile.Email, patch.Email)
	set(&acc.Profile.Bio, patch.Bio)
}

// UpdateProfile 超出存储上限时去掉内嵌图片重试一次；成功后同步帖子作者快照
func (s *AccountServiceImpl) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrUserNotFound
	}

	hash := ""
	if patch.Password != nil {
		if !util.ValidPassword(*patch.Password) {
			return nil, ErrPasswordTooShort
		}
		if hash, err = security.HashPassword(*patch.Password); err != nil {
			return nil, err
		}
	}

	save := func(stripImages bool) (*model.Account, error) {
		return s.accountRepo.Update(ctx, acc.LoginID, func(a *model.Account, exists bool) error {
			if !exists {
				return ErrUserNotFound
			}
			applyProfile(a, patch)
			if stripImages {
				if strings.HasPrefix(a.Profile.Avatar, "data:") {
					a.Profile.Avatar = ""
				}
				if strings.HasPrefix(a.Profile.Cover, "data:") {
					a.Profile.Cover = ""
				}
			}
			if hash != "" {
				a.PasswordHash = hash
			}
			a.UpdatedAt = time.Now()
			return nil
		})
	}
	updated, err := save(false)
	if errors.Is(err, kv.ErrQuotaExceeded) {
		log.WarnContext(ctx, "profile exceeds storage quota, dropping embedded images", "user_id", userID)
		updated, err = save(true)
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return nil, ErrStorageFull
		}
	}
	if err != nil {
		return nil, err
	}

	updated, err = s.ensureCanonical(ctx, updated)
	if err != nil {
		return nil, err
	}
	touchLastActive(ctx, s.adminMetaRepo, updated.ID)

	if snap := s.access.snapshot(ctx, updated.ID); snap != nil {
		n, err := s.postService.UpdateAuthorSnapshot(ctx, *snap)
		if err != nil {
			log.WarnContext(ctx, "propagate profile into posts failed", "user_id", updated.ID, "err", err)
		} else if n > 0 {
			log.DebugContext(ctx, "author snapshots refreshed", "user_id", updated.ID, "posts", n)
		}
	}
	return updated, nil
}

func (s *AccountServiceImpl) GetByID(ctx context.Context, userID string) (*model.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrUserNotFound
	}
	return acc, nil
}

func (s *AccountServiceImpl) GetByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	acc, err := s.accountRepo.Get(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrUserNotFound
	}
	return acc, nil
}

func (s *AccountServiceImpl) Info(ctx context.Context, userID string) (*UserInfo, error) {
	acc, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meta := s.adminMetaRepo.Read(ctx, userID)
	followers, err := s.followRepo.Count(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "count followers failed", "user_id", userID, "err", err)
	}
	profile := acc.Profile
	if profile.Name == "" {
		profile.Name = acc.DisplayName()
	}
	return &UserInfo{
		ID:        acc.ID,
		LoginID:   acc.LoginID,
		Profile:   profile,
		IsAdmin:   model.EffectiveAdmin(acc.IsAdmin, meta),
		TagInfo:   model.BuildTagInfo(acc.IsAdmin, meta),
		Followers: followers,
		IsMuted:   meta.IsMuted,
		IsBanned:  meta.IsBanned,
	}, nil
}

func (s *AccountServiceImpl) List(ctx context.Context) ([]*model.Account, error) {
	return s.accountRepo.List(ctx)
}

// GrantAdmin 同时写入账户标记与角色，保证两处一致
func (s *AccountServiceImpl) GrantAdmin(ctx context.Context, loginID string, admin bool) (*model.Account, error) {
	acc, err := s.accountRepo.Update(ctx, loginID, func(a *model.Account, exists bool) error {
		if !exists {
			return ErrUserNotFound
		}
		a.IsAdmin = admin
		a.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	role := consts.RoleUser
	if admin {
		role = consts.RoleAdmin
	}
	if _, err := s.adminMetaRepo.Update(ctx, acc.ID, func(m *model.AdminMeta) error {
		m.Role = role
		return nil
	}); err != nil {
		return nil, err
	}
	if snap := s.access.snapshot(ctx, acc.ID); snap != nil {
		if _, err := s.postService.UpdateAuthorSnapshot(ctx, *snap); err != nil {
			log.WarnContext(ctx, "propagate admin tag failed", "user_id", acc.ID, "err", err)
		}
	}
	return acc, nil
}
