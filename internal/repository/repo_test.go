package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/kv"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.OpenBadger(kv.InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIdentityRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepo(newStore(t), "seq")

	t.Run("supported ids", func(t *testing.T) {
		assert.True(t, repo.IsSupported("1"))
		assert.True(t, repo.IsSupported("42"))
		assert.False(t, repo.IsSupported("0"))
		assert.False(t, repo.IsSupported("007"))
		assert.False(t, repo.IsSupported("Bob"))
		assert.True(t, repo.IsSupported("3f2504e0-4f89-41d3-9a0c-0305e82c3301"))
		assert.False(t, repo.IsSupported("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	})

	t.Run("resolve is stable", func(t *testing.T) {
		first, err := repo.Resolve(ctx, "Bob")
		require.NoError(t, err)
		second, err := repo.Resolve(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, repo.IsSupported(first))

		same, err := repo.Resolve(ctx, "17")
		require.NoError(t, err)
		assert.Equal(t, "17", same)
	})

	t.Run("first writer wins", func(t *testing.T) {
		got, err := repo.RecordMapping(ctx, "Carol", "100")
		require.NoError(t, err)
		assert.Equal(t, "100", got)

		got, err = repo.RecordMapping(ctx, "Carol", "200")
		require.NoError(t, err)
		assert.Equal(t, "100", got)

		_, err = repo.RecordMapping(ctx, "5", "6")
		assert.Error(t, err)
	})

	t.Run("allocate never reuses", func(t *testing.T) {
		a, err := repo.Allocate(ctx)
		require.NoError(t, err)
		b, err := repo.Allocate(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestIdentityRepo_UUIDStrategy(t *testing.T) {
	repo := NewIdentityRepo(newStore(t), "uuid")
	id, err := repo.Allocate(context.Background())
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.True(t, repo.IsSupported(id))
}

func TestFollowRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewFollowRepo(newStore(t))

	following, count, err := repo.Toggle(ctx, "1", "1")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, 0, count)

	following, count, err = repo.Toggle(ctx, "1", "2")
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, 1, count)

	_, _, err = repo.Toggle(ctx, "2", "1")
	require.NoError(t, err)

	ok, err := repo.IsFollowing(ctx, "1", "2")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.Following(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, list)

	require.NoError(t, repo.RemoveRelation(ctx, "2", "1"))
	ok, _ = repo.IsFollowing(ctx, "1", "2")
	assert.False(t, ok)
	ok, _ = repo.IsFollowing(ctx, "2", "1")
	assert.False(t, ok)
}

func TestFollowRepo_Rekey(t *testing.T) {
	ctx := context.Background()
	repo := NewFollowRepo(newStore(t))
	_, _, _ = repo.Toggle(ctx, "Bob", "3")
	_, _, _ = repo.Toggle(ctx, "9", "3")
	_, _, _ = repo.Toggle(ctx, "3", "Bob")
	_, _, _ = repo.Toggle(ctx, "9", "Bob")

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Rekey(ctx, "Bob", "9"))
	}

	followers, err := repo.Followers(ctx, "3")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"9"}, followers)

	followers, err = repo.Followers(ctx, "9")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"3"}, followers)

	followers, _ = repo.Followers(ctx, "Bob")
	assert.Empty(t, followers)
}

func TestBlockRepo(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	repo := NewBlockRepo(store)

	blocked, err := repo.Toggle(ctx, "1", "1")
	require.NoError(t, err)
	assert.False(t, blocked)

	blocked, err = repo.Toggle(ctx, "1", "Bob")
	require.NoError(t, err)
	assert.True(t, blocked)
	_, err = repo.Toggle(ctx, "Bob", "2")
	require.NoError(t, err)

	require.NoError(t, repo.Rekey(ctx, "Bob", "5"))

	list, err := repo.List(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, list)

	list, err = repo.List(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, list)

	list, _ = repo.List(ctx, "Bob")
	assert.Empty(t, list)
}

func TestMoveKey_Conflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, kv.SetJSON(ctx, store, "likes:old", []string{"p1"}))
	require.NoError(t, kv.SetJSON(ctx, store, "likes:new", []string{"p2"}))

	require.NoError(t, MoveKey(ctx, store, "likes:old", "likes:new"))

	var list []string
	_, err := kv.GetJSON(ctx, store, "likes:new", &list)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, list)
	_, ok, _ := store.Get(ctx, "likes:old")
	assert.False(t, ok)

	require.NoError(t, kv.SetJSON(ctx, store, "likes:a", []string{"p3"}))
	require.NoError(t, kv.SetJSON(ctx, store, "likes:b", []string{}))
	require.NoError(t, MoveKey(ctx, store, "likes:a", "likes:b"))
	_, err = kv.GetJSON(ctx, store, "likes:b", &list)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, list)
}

func TestMessageRepo_Rekey(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepo(newStore(t))
	now := time.Now()

	_, err := repo.Update(ctx, "Bob", "3", func(msgs []*model.Message) ([]*model.Message, error) {
		return append(msgs, &model.Message{ID: "m1", From: "Bob", To: "3", Content: "hi", CreatedAt: now}), nil
	})
	require.NoError(t, err)
	_, err = repo.Update(ctx, "8", "3", func(msgs []*model.Message) ([]*model.Message, error) {
		return append(msgs, &model.Message{ID: "m2", From: "3", To: "8", Content: "yo", CreatedAt: now.Add(time.Second)}), nil
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Rekey(ctx, "Bob", "8"))
	}

	msgs := repo.History(ctx, "3", "8")
	require.Len(t, msgs, 2)
	assert.Equal(t, "8", msgs[0].From)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Empty(t, repo.History(ctx, "Bob", "3"))

	convs, err := repo.Conversations(ctx, "3")
	require.NoError(t, err)
	assert.Len(t, convs["8"], 2)
}

func TestThreadKey(t *testing.T) {
	assert.Equal(t, "dm:1_2", ThreadKey("2", "1"))
	assert.Equal(t, ThreadKey("a", "b"), ThreadKey("b", "a"))
}
