package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dumpStore(t *testing.T, store kv.Store) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		raw, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		if ok {
			out[key] = string(raw)
		}
	}
	return out
}

func seedLegacyUser(t *testing.T, env *testEnv, legacy string) {
	t.Helper()
	ctx := context.Background()
	_, err := env.actionRepo.Toggle(ctx, "likes", legacy, "p1")
	require.NoError(t, err)
	_, err = env.actionRepo.Toggle(ctx, "favorites", legacy, "p1")
	require.NoError(t, err)
	_, err = env.adminMetaRepo.Write(ctx, legacy, model.AdminMetaPatch{Title: util.Ptr("老用户")})
	require.NoError(t, err)
	_, err = env.blockRepo.Toggle(ctx, legacy, "9")
	require.NoError(t, err)
	_, _, err = env.followRepo.Toggle(ctx, legacy, "8")
	require.NoError(t, err)
	_, _, err = env.followRepo.Toggle(ctx, "8", legacy)
	require.NoError(t, err)
	_, err = env.messageRepo.Update(ctx, legacy, "8", func(msgs []*model.Message) ([]*model.Message, error) {
		return append(msgs, &model.Message{ID: "m1", From: legacy, To: "8", Content: "hi", CreatedAt: time.Now()}), nil
	})
	require.NoError(t, err)
	_, err = env.replyRepo.Update(ctx, "p1", func(replies []*model.Reply) ([]*model.Reply, error) {
		return append(replies, &model.Reply{ID: "r1", Author: model.AuthorSnapshot{ID: legacy, Name: legacy}, Content: "hi"}), nil
	})
	require.NoError(t, err)
	p := newPost("p1", "旧帖子", "2023-01-01T00:00:00Z")
	p.Author = model.AuthorSnapshot{Name: legacy}
	_, err = env.posts.Upsert(ctx, "", p)
	require.NoError(t, err)
}

func TestMigrationService_Migrate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedLegacyUser(t, env, "Bob")

	var migrated []Rename
	env.bus.Subscribe(consts.TopicUserMigrated, func(_ context.Context, evt event.Event) {
		migrated = append(migrated, *evt.Payload.(*Rename))
	})

	require.NoError(t, env.migration.Migrate(ctx, "Bob", "5", "鲍勃"))
	first := dumpStore(t, env.store)

	liked, err := env.actions.Liked(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, liked)
	assert.Equal(t, "老用户", env.moderation.GetMeta(ctx, "5").Title)
	blocked, err := env.social.ListBlocked(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, blocked)
	following, err := env.social.IsFollowing(ctx, "5", "8")
	require.NoError(t, err)
	assert.True(t, following)
	followers, err := env.social.Followers(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, followers)
	assert.Len(t, env.messageRepo.History(ctx, "5", "8"), 1)
	assert.Empty(t, env.messageRepo.History(ctx, "Bob", "8"))
	replies := env.replyRepo.List(ctx, "p1")
	require.Len(t, replies, 1)
	assert.Equal(t, "5", replies[0].Author.ID)
	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "5", posts[0].Author.ID)

	mapped, ok := env.identityRepo.Lookup(ctx, "Bob")
	assert.True(t, ok)
	assert.Equal(t, "5", mapped)
	for _, key := range []string{"likes:Bob", "favorites:Bob", "admin_meta:Bob", "block_list:Bob"} {
		_, ok := first[key]
		assert.False(t, ok, key)
	}

	require.NoError(t, env.migration.Migrate(ctx, "Bob", "5", "鲍勃"))
	assert.Equal(t, first, dumpStore(t, env.store))
	assert.Len(t, migrated, 2)
}

func TestMigrationService_ConflictKeepsDestination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.adminMetaRepo.Write(ctx, "Bob", model.AdminMetaPatch{Title: util.Ptr("旧")})
	require.NoError(t, err)
	_, err = env.adminMetaRepo.Write(ctx, "5", model.AdminMetaPatch{Title: util.Ptr("新")})
	require.NoError(t, err)

	require.NoError(t, env.migration.Migrate(ctx, "Bob", "5", ""))
	assert.Equal(t, "新", env.moderation.GetMeta(ctx, "5").Title)
	_, ok, err := env.store.Get(ctx, "admin_meta:Bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrationService_Namespaces(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, []string{"actions", "admin_meta", "block_list", "dm", "follow_graph", "local_replies", "posts"},
		env.migration.Namespaces())

	assert.ErrorIs(t, env.migration.Migrate(context.Background(), "", "5", ""), ErrParamInvalid)
	assert.NoError(t, env.migration.Migrate(context.Background(), "5", "5", ""))
}

func TestMigrationService_PropagatesDisplayName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.login(t, "bob")
	p := newPost("p1", "旧帖子", "")
	p.Author = model.AuthorSnapshot{Name: "Bob"}
	_, err := env.posts.Upsert(ctx, "", p)
	require.NoError(t, err)

	require.NoError(t, env.migration.Migrate(ctx, "Bob", id, "鲍勃"))
	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, id, posts[0].Author.ID)
	assert.Equal(t, "鲍勃", posts[0].Author.Name)
}
