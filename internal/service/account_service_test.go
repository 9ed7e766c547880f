package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/security"
	"AmineForum/internal/pkg/util"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("first login creates sequential id", func(t *testing.T) {
		env := newTestEnv(t)
		sess, err := env.accounts.Login(ctx, "alice", "longenough")
		require.NoError(t, err)
		assert.True(t, sess.IsNew)
		assert.Equal(t, "1", sess.Account.ID)
		assert.NotEmpty(t, sess.Account.PasswordHash)
		assert.NotEqual(t, "longenough", sess.Account.PasswordHash)

		again, err := env.accounts.Login(ctx, "alice", "longenough")
		require.NoError(t, err)
		assert.False(t, again.IsNew)
		assert.Equal(t, "1", again.Account.ID)

		list, err := env.accounts.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		claims, err := security.ValidateToken(again.Token)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.UserID)
		assert.Equal(t, "alice", claims.LoginID)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t, "alice")
		_, err := env.accounts.Login(ctx, "alice", "differentpw")
		assert.ErrorIs(t, err, ErrPasswordIncorrect)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.accounts.Login(ctx, "", "longenough")
		assert.ErrorIs(t, err, ErrLoginIDInvalid)
		_, err = env.accounts.Login(ctx, "has space", "longenough")
		assert.ErrorIs(t, err, ErrLoginIDInvalid)
		_, err = env.accounts.Login(ctx, strings.Repeat("a", 65), "longenough")
		assert.ErrorIs(t, err, ErrLoginIDInvalid)
		_, err = env.accounts.Login(ctx, " alice ", "longenough")
		assert.ErrorIs(t, err, ErrLoginIDInvalid)
		_, err = env.accounts.Login(ctx, "alice", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		list, err := env.accounts.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("second user gets next id", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, "1", env.login(t, "alice"))
		assert.Equal(t, "2", env.login(t, "bob"))
	})

	t.Run("legacy account without password adopts it", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.accountRepo.Update(ctx, "old", func(acc *model.Account, exists bool) error {
			acc.ID = "7"
			return nil
		})
		require.NoError(t, err)

		sess, err := env.accounts.Login(ctx, "old", "longenough")
		require.NoError(t, err)
		assert.False(t, sess.IsNew)
		assert.Equal(t, "7", sess.Account.ID)
		assert.NotEmpty(t, sess.Account.PasswordHash)

		_, err = env.accounts.Login(ctx, "old", "otherpassword")
		assert.ErrorIs(t, err, ErrPasswordIncorrect)
	})

	t.Run("legacy name id is resolved and migrated", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.accountRepo.Update(ctx, "carol", func(acc *model.Account, exists bool) error {
			acc.Profile.Name = "卡罗尔"
			return nil
		})
		require.NoError(t, err)
		legacy := util.LegacyUserID("卡罗尔", "carol")
		_, err = env.actionRepo.Toggle(ctx, "likes", legacy, "p1")
		require.NoError(t, err)

		sess, err := env.accounts.Login(ctx, "carol", "longenough")
		require.NoError(t, err)
		assert.Equal(t, "1", sess.Account.ID)

		mapped, ok := env.identityRepo.Lookup(ctx, legacy)
		assert.True(t, ok)
		assert.Equal(t, "1", mapped)

		liked, err := env.actions.Liked(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, liked)
		old, err := env.actions.Liked(ctx, legacy)
		require.NoError(t, err)
		assert.Empty(t, old)
	})

	t.Run("login touches last active", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.login(t, "alice")
		meta := env.moderation.GetMeta(ctx, id)
		assert.False(t, meta.LastActiveAt.IsZero())
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.login(t, "alice")

	_, err := env.posts.Upsert(ctx, id, newPost("", "第一篇帖子", ""))
	require.NoError(t, err)

	acc, err := env.accounts.UpdateProfile(ctx, id, ProfilePatch{
		Name:   util.Ptr("爱丽丝"),
		School: util.Ptr("E大"),
	})
	require.NoError(t, err)
	assert.Equal(t, "爱丽丝", acc.Profile.Name)
	assert.Equal(t, id, acc.ID)

	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "爱丽丝", posts[0].Author.Name)
	assert.Equal(t, "E大", posts[0].Author.School)

	t.Run("password change", func(t *testing.T) {
		_, err := env.accounts.UpdateProfile(ctx, id, ProfilePatch{Password: util.Ptr("short")})
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		_, err = env.accounts.UpdateProfile(ctx, id, ProfilePatch{Password: util.Ptr("brandnewpass")})
		require.NoError(t, err)
		_, err = env.accounts.Login(ctx, "alice", "longenough")
		assert.ErrorIs(t, err, ErrPasswordIncorrect)
		_, err = env.accounts.Login(ctx, "alice", "brandnewpass")
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.accounts.UpdateProfile(ctx, "404", ProfilePatch{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAccountService_UpdateProfileQuota(t *testing.T) {
	ctx := context.Background()
	env := newQuotaTestEnv(t, 2048)
	id := env.login(t, "alice")
	image := "data:image/png;base64," + strings.Repeat("A", 4096)

	acc, err := env.accounts.UpdateProfile(ctx, id, ProfilePatch{
		Name:   util.Ptr("爱丽丝"),
		Avatar: util.Ptr(image),
	})
	require.NoError(t, err)
	assert.Empty(t, acc.Profile.Avatar)
	assert.Equal(t, "爱丽丝", acc.Profile.Name)

	info, err := env.accounts.Info(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "爱丽丝", info.Profile.Name)
	assert.Empty(t, info.Profile.Avatar)

	t.Run("too large without images", func(t *testing.T) {
		_, err := env.accounts.UpdateProfile(ctx, id, ProfilePatch{Bio: util.Ptr(strings.Repeat("长", 2048))})
		assert.ErrorIs(t, err, ErrStorageFull)
	})
}

func TestAccountService_Info(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	_, err := env.social.ToggleFollow(ctx, bob, alice)
	require.NoError(t, err)

	info, err := env.accounts.Info(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Profile.Name)
	assert.Equal(t, 1, info.Followers)
	assert.False(t, info.IsAdmin)
	assert.Nil(t, info.TagInfo)

	_, err = env.accounts.GrantAdmin(ctx, "alice", true)
	require.NoError(t, err)
	info, err = env.accounts.Info(ctx, alice)
	require.NoError(t, err)
	assert.True(t, info.IsAdmin)
	require.NotNil(t, info.TagInfo)
	assert.Equal(t, "管理员", info.TagInfo.Label)
}
