package service

import (
	"AmineForum/internal/repository"
	"context"
	log "log/slog"
)

// FollowState toggleFollow 的结果
type FollowState struct {
	IsFollowing bool `json:"isFollowing"`
	Count       int  `json:"count"`
}

type SocialService interface {
	ToggleFollow(ctx context.Context, followerID, targetID string) (*FollowState, error)
	FollowerCount(ctx context.Context, targetID string) (int, error)
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	Followers(ctx context.Context, targetID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
	RemoveRelation(ctx context.Context, a, b string) error
	ToggleBlock(ctx context.Context, blockerID, targetID string) (bool, error)
	IsBlocked(ctx context.Context, blockerID, targetID string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string) ([]string, error)
	HasBlockRelation(ctx context.Context, a, b string) bool
}

type SocialServiceImpl struct {
	followRepo repository.FollowRepo
	blockRepo  repository.BlockRepo
	access     *accessChecker
}

func NewSocialService(followRepo repository.FollowRepo, blockRepo repository.BlockRepo, accountRepo repository.AccountRepo, adminMetaRepo repository.AdminMetaRepo) SocialService {
	return &SocialServiceImpl{
		followRepo: followRepo,
		blockRepo:  blockRepo,
		access:     newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
	}
}

// ToggleFollow 关注自己时原样返回当前状态；存在拉黑关系时不允许关注
func (s *SocialServiceImpl) ToggleFollow(ctx context.Context, followerID, targetID string) (*FollowState, error) {
	if followerID == "" || targetID == "" {
		return nil, ErrParamInvalid
	}
	if followerID != targetID && s.access.hasBlockRelation(ctx, followerID, targetID) {
		following, err := s.followRepo.IsFollowing(ctx, followerID, targetID)
		if err != nil {
			return nil, err
		}
		if !following {
			return nil, ErrBlocked
		}
	}
	following, count, err := s.followRepo.Toggle(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowState{IsFollowing: following, Count: count}, nil
}

func (s *SocialServiceImpl) FollowerCount(ctx context.Context, targetID string) (int, error) {
	return s.followRepo.Count(ctx, targetID)
}

func (s *SocialServiceImpl) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, targetID)
}

func (s *SocialServiceImpl) Followers(ctx context.Context, targetID string) ([]string, error) {
	return s.followRepo.Followers(ctx, targetID)
}

func (s *SocialServiceImpl) Following(ctx context.Context, userID string) ([]string, error) {
	return s.followRepo.Following(ctx, userID)
}

func (s *SocialServiceImpl) RemoveRelation(ctx context.Context, a, b string) error {
	return s.followRepo.RemoveRelation(ctx, a, b)
}

// ToggleBlock 拉黑时同时解除双方的关注关系
func (s *SocialServiceImpl) ToggleBlock(ctx context.Context, blockerID, targetID string) (bool, error) {
	if blockerID == "" || targetID == "" {
		return false, ErrParamInvalid
	}
	if blockerID == targetID {
		return false, ErrBlockSelf
	}
	blocked, err := s.blockRepo.Toggle(ctx, blockerID, targetID)
	if err != nil {
		return false, err
	}
	if blocked {
		if err := s.followRepo.RemoveRelation(ctx, blockerID, targetID); err != nil {
			log.WarnContext(ctx, "remove follow relation after block failed", "blocker", blockerID, "target", targetID, "err", err)
		}
	}
	return blocked, nil
}

func (s *SocialServiceImpl) IsBlocked(ctx context.Context, blockerID, targetID string) (bool, error) {
	return s.blockRepo.IsBlocked(ctx, blockerID, targetID)
}

func (s *SocialServiceImpl) ListBlocked(ctx context.Context, blockerID string) ([]string, error) {
	return s.blockRepo.List(ctx, blockerID)
}

func (s *SocialServiceImpl) HasBlockRelation(ctx context.Context, a, b string) bool {
	return s.access.hasBlockRelation(ctx, a, b)
}
