package service

import (
	"AmineForum/internal/pkg/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	carol := env.login(t, "carol")
	admin := env.admin(t, "root")
	_, err := env.posts.Upsert(ctx, alice, newPost("p1", "讨论帖", ""))
	require.NoError(t, err)

	top, err := env.replies.Add(ctx, bob, "p1", "  第一条  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "第一条", top.Content)
	assert.Nil(t, top.ParentID)

	nested, err := env.replies.Add(ctx, carol, "p1", "回复鲍勃", util.Ptr(top.ID))
	require.NoError(t, err)
	assert.Equal(t, "bob", nested.ReplyToName)

	deeper, err := env.replies.Add(ctx, alice, "p1", "再回复", util.Ptr(nested.ID))
	require.NoError(t, err)
	assert.Equal(t, "carol", deeper.ReplyToName)

	stats, err := env.stats.GetForPost(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Replies)

	t.Run("validation", func(t *testing.T) {
		_, err := env.replies.Add(ctx, bob, "p1", "   ", nil)
		assert.ErrorIs(t, err, ErrContentEmpty)
		_, err = env.replies.Add(ctx, bob, "missing", "hi", nil)
		assert.ErrorIs(t, err, ErrPostNotFound)
		_, err = env.replies.Add(ctx, bob, "p1", "hi", util.Ptr("nope"))
		assert.ErrorIs(t, err, ErrReplyNotFound)
	})

	t.Run("blocked authors hidden", func(t *testing.T) {
		_, err := env.social.ToggleBlock(ctx, carol, bob)
		require.NoError(t, err)
		list, err := env.replies.List(ctx, "p1", carol)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		list, err = env.replies.List(ctx, "p1", alice)
		require.NoError(t, err)
		assert.Len(t, list, 3)
		_, err = env.social.ToggleBlock(ctx, carol, bob)
		require.NoError(t, err)
	})

	t.Run("muted cannot reply", func(t *testing.T) {
		_, err := env.moderation.SetMuted(ctx, admin, carol, true)
		require.NoError(t, err)
		_, err = env.replies.Add(ctx, carol, "p1", "hi", nil)
		assert.ErrorIs(t, err, ErrUserMuted)
	})

	t.Run("delete cascades", func(t *testing.T) {
		assert.ErrorIs(t, env.replies.Delete(ctx, carol, "p1", top.ID), UnauthorizedError)
		require.NoError(t, env.replies.Delete(ctx, bob, "p1", top.ID))
		list, err := env.replies.List(ctx, "p1", "")
		require.NoError(t, err)
		assert.Empty(t, list)
		stats, err := env.stats.GetForPost(ctx, "p1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, stats.Replies)
		assert.ErrorIs(t, env.replies.Delete(ctx, admin, "p1", top.ID), ErrReplyNotFound)
	})
}
