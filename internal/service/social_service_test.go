package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialService_Follow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	state, err := env.social.ToggleFollow(ctx, alice, alice)
	require.NoError(t, err)
	assert.False(t, state.IsFollowing)
	assert.Zero(t, state.Count)

	state, err = env.social.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, state.IsFollowing)
	assert.Equal(t, 1, state.Count)

	followers, err := env.social.Followers(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, followers)
	following, err := env.social.Following(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, following)

	state, err = env.social.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, state.IsFollowing)
	assert.Zero(t, state.Count)

	_, err = env.social.ToggleFollow(ctx, "", bob)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestSocialService_Block(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	_, err := env.social.ToggleBlock(ctx, alice, alice)
	assert.ErrorIs(t, err, ErrBlockSelf)
	self, err := env.social.IsBlocked(ctx, alice, alice)
	require.NoError(t, err)
	assert.False(t, self)

	_, err = env.social.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	_, err = env.social.ToggleFollow(ctx, bob, alice)
	require.NoError(t, err)

	blocked, err := env.social.ToggleBlock(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.True(t, env.social.HasBlockRelation(ctx, alice, bob))
	assert.True(t, env.social.HasBlockRelation(ctx, bob, alice))

	list, err := env.social.ListBlocked(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, list)

	for _, pair := range [][2]string{{alice, bob}, {bob, alice}} {
		following, err := env.social.IsFollowing(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, following)
	}

	_, err = env.social.ToggleFollow(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrBlocked)

	blocked, err = env.social.ToggleBlock(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.False(t, env.social.HasBlockRelation(ctx, bob, alice))
}
