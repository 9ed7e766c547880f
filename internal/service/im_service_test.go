package service

import (
	"AmineForum/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIMService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	carol := env.login(t, "carol")

	_, err := env.im.Send(ctx, alice, alice, "hi")
	assert.ErrorIs(t, err, ErrMessageSelf)
	_, err = env.im.Send(ctx, alice, bob, "  ")
	assert.ErrorIs(t, err, ErrMessageEmpty)
	_, err = env.im.Send(ctx, alice, "404", "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)

	m1, err := env.im.Send(ctx, alice, bob, "你好")
	require.NoError(t, err)
	assert.Equal(t, "alice", m1.FromName)
	assert.Equal(t, "bob", m1.ToName)
	_, err = env.im.Send(ctx, bob, alice, "在吗")
	require.NoError(t, err)
	_, err = env.im.Send(ctx, carol, alice, "hello")
	require.NoError(t, err)

	history, err := env.im.History(ctx, bob, alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, m1.ID, history[0].ID)

	threads, err := env.im.Threads(ctx, alice)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, carol, threads[0].PeerID)
	assert.Equal(t, "carol", threads[0].PeerName)
	assert.Equal(t, 2, threads[1].Count)

	t.Run("recall", func(t *testing.T) {
		_, err := env.im.Recall(ctx, bob, alice, m1.ID)
		assert.ErrorIs(t, err, ErrNotMessageSender)
		_, err = env.im.Recall(ctx, alice, bob, "missing")
		assert.ErrorIs(t, err, ErrMessageNotFound)

		recalled, err := env.im.Recall(ctx, alice, bob, m1.ID)
		require.NoError(t, err)
		assert.True(t, recalled.Recalled)
		assert.Equal(t, consts.RecalledMessage, recalled.Content)
		assert.Equal(t, m1.ID, recalled.ID)
		assert.Equal(t, m1.CreatedAt.Unix(), recalled.CreatedAt.Unix())
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, env.im.Delete(ctx, bob, alice, m1.ID), ErrNotMessageSender)
		require.NoError(t, env.im.Delete(ctx, alice, bob, m1.ID))
		history, err := env.im.History(ctx, alice, bob)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("block stops messaging both ways", func(t *testing.T) {
		_, err := env.social.ToggleBlock(ctx, bob, alice)
		require.NoError(t, err)
		_, err = env.im.Send(ctx, alice, bob, "还在吗")
		assert.ErrorIs(t, err, ErrBlocked)
		_, err = env.im.Send(ctx, bob, alice, "再见")
		assert.ErrorIs(t, err, ErrBlocked)

		history, err := env.im.History(ctx, alice, bob)
		require.NoError(t, err)
		assert.Empty(t, history)
		threads, err := env.im.Threads(ctx, alice)
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, carol, threads[0].PeerID)
	})
}
