package service

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

type testEnv struct {
	store kv.Store
	bus   *event.Bus

	identityRepo  repository.IdentityRepo
	accountRepo   repository.AccountRepo
	adminMetaRepo repository.AdminMetaRepo
	followRepo    repository.FollowRepo
	blockRepo     repository.BlockRepo
	actionRepo    repository.PostActionRepo
	postRepo      repository.PostRepo
	statsRepo     repository.PostStatsRepo
	replyRepo     repository.ReplyRepo
	messageRepo   repository.MessageRepo

	posts      PostService
	stats      StatsService
	actions    PostActionService
	social     SocialService
	moderation ModerationService
	migration  MigrationService
	accounts   AccountService
	replies    ReplyService
	im         IMService
}

func newTestEnv(t *testing.T) *testEnv {
	return newQuotaTestEnv(t, 0)
}

// newQuotaTestEnv 单个值超过 max 字节时写入失败，max <= 0 不限制
func newQuotaTestEnv(t *testing.T, max int) *testEnv {
	t.Helper()
	security.Setup("test-secret", time.Hour)
	badger, err := kv.OpenBadger(kv.InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = badger.Close() })
	store := kv.WithQuota(badger, max)

	e := &testEnv{store: store, bus: event.NewBus()}
	e.identityRepo = repository.NewIdentityRepo(store, consts.IdentityStrategySeq)
	e.accountRepo = repository.NewAccountRepo(store)
	e.adminMetaRepo = repository.NewAdminMetaRepo(store)
	e.followRepo = repository.NewFollowRepo(store)
	e.blockRepo = repository.NewBlockRepo(store)
	e.actionRepo = repository.NewPostActionRepo(store)
	e.postRepo = repository.NewPostRepo(store)
	e.statsRepo = repository.NewPostStatsRepo(store)
	e.replyRepo = repository.NewReplyRepo(store)
	e.messageRepo = repository.NewMessageRepo(store)

	e.posts = NewPostService(e.postRepo, e.statsRepo, e.replyRepo, e.actionRepo, e.accountRepo, e.adminMetaRepo, e.blockRepo,
		nil, e.bus, config.DefaultCategories)
	e.stats = NewStatsService(e.statsRepo, e.postRepo, e.bus)
	e.actions = NewPostActionService(e.actionRepo, e.postRepo, e.stats)
	e.social = NewSocialService(e.followRepo, e.blockRepo, e.accountRepo, e.adminMetaRepo)
	e.moderation = NewModerationService(e.adminMetaRepo, e.accountRepo, e.followRepo, e.blockRepo, e.posts, testAdminKey)
	e.migration = NewMigrationService(e.identityRepo, e.actionRepo, e.adminMetaRepo, e.accountRepo, e.blockRepo,
		e.messageRepo, e.followRepo, e.replyRepo, e.posts, e.bus)
	e.accounts = NewAccountService(e.accountRepo, e.identityRepo, e.adminMetaRepo, e.followRepo, e.blockRepo, e.posts, e.migration)
	e.replies = NewReplyService(e.replyRepo, e.postRepo, e.accountRepo, e.adminMetaRepo, e.blockRepo, e.stats)
	e.im = NewIMService(e.messageRepo, e.accountRepo, e.adminMetaRepo, e.blockRepo)
	return e
}

func (e *testEnv) login(t *testing.T, loginID string) string {
	t.Helper()
	sess, err := e.accounts.Login(context.Background(), loginID, "longenough")
	require.NoError(t, err)
	return sess.Account.ID
}

func (e *testEnv) admin(t *testing.T, loginID string) string {
	t.Helper()
	id := e.login(t, loginID)
	_, err := e.accounts.GrantAdmin(context.Background(), loginID, true)
	require.NoError(t, err)
	return id
}

func newPost(id, title, date string) *model.Post {
	return &model.Post{
		ID:       id,
		Title:    title,
		Category: config.DefaultCategories[0],
		Content:  "正文内容 some words here",
		Date:     date,
	}
}

func ids(posts []*model.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
