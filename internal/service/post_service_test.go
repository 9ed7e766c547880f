package service

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	p := newPost("p1", "你好世界", "2024-01-01T00:00:00Z")
	p.Author = model.AuthorSnapshot{Name: "Bob"}
	saved, err := env.posts.Upsert(ctx, "", p)
	require.NoError(t, err)
	assert.Equal(t, "Bob", saved.Author.ID)
	assert.Equal(t, consts.PostStatusPublished, saved.Status)
	assert.Equal(t, consts.DefaultPostOrder, saved.Order)
	assert.NotEmpty(t, saved.Summary)
	assert.True(t, strings.HasSuffix(saved.ReadTime, "min read"))

	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(posts))

	require.NoError(t, env.posts.MarkDeleted(ctx, "", "p1"))
	require.NoError(t, env.posts.MarkDeleted(ctx, "", "p1"))
	posts, err = env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Len(t, env.postRepo.Tombstones(ctx), 1)

	_, err = env.posts.Upsert(ctx, "", newPost("p1", "你好世界", "2024-01-01T00:00:00Z"))
	require.NoError(t, err)
	posts, err = env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts)

	got, err := env.posts.LoadPostContent(ctx, "p1", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostService_UpsertValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cases := []struct {
		name string
		edit func(p *model.Post)
		want error
	}{
		{"title too short", func(p *model.Post) { p.Title = "a" }, ErrPostTitleInvalid},
		{"title too long", func(p *model.Post) { p.Title = strings.Repeat("长", 101) }, ErrPostTitleInvalid},
		{"unknown category", func(p *model.Post) { p.Category = "nope" }, ErrCategoryInvalid},
		{"missing category", func(p *model.Post) { p.Category = "" }, ErrCategoryInvalid},
		{"empty content", func(p *model.Post) { p.Content = "  " }, ErrContentEmpty},
		{"summary too long", func(p *model.Post) { p.Summary = strings.Repeat("字", 301) }, ErrSummaryTooLong},
		{"bad status", func(p *model.Post) { p.Status = "archived" }, ErrParamInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPost("", "正常标题", "")
			tc.edit(p)
			_, err := env.posts.Upsert(ctx, "", p)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("draft still needs title category and content", func(t *testing.T) {
		_, err := env.posts.Upsert(ctx, "", &model.Post{Status: consts.PostStatusDraft})
		assert.ErrorIs(t, err, ErrPostTitleInvalid)

		_, err = env.posts.Upsert(ctx, "", &model.Post{Title: "草稿", Status: consts.PostStatusDraft})
		assert.ErrorIs(t, err, ErrCategoryInvalid)

		p := newPost("", "草稿", "")
		p.Status = consts.PostStatusDraft
		p.Content = ""
		_, err = env.posts.Upsert(ctx, "", p)
		assert.ErrorIs(t, err, ErrContentEmpty)

		p.Content = "写了一半"
		saved, err := env.posts.Upsert(ctx, "", p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.ID, "post-"))
		assert.Equal(t, consts.PostStatusDraft, saved.Status)
	})
}

func TestPostService_EditFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")

	p := newPost("", "带标签的帖子", "1999-01-01T00:00:00Z")
	p.Tags = []string{"番剧", "闲聊"}
	p.Summary = "手写摘要"
	saved, err := env.posts.Upsert(ctx, alice, p)
	require.NoError(t, err)

	t.Run("user supplied date ignored on create", func(t *testing.T) {
		assert.NotEqual(t, "1999-01-01T00:00:00Z", saved.Date)
		assert.WithinDuration(t, time.Now(), saved.Time(), time.Minute)
	})

	t.Run("edit keeps stored date", func(t *testing.T) {
		edited, err := env.posts.Upsert(ctx, alice, &model.Post{
			ID:      saved.ID,
			Tags:    saved.Tags,
			Summary: saved.Summary,
			Date:    "2000-01-01T00:00:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, saved.Date, edited.Date)
	})

	t.Run("edit can clear tags and summary", func(t *testing.T) {
		edited, err := env.posts.Upsert(ctx, alice, &model.Post{ID: saved.ID, Tags: []string{}, Summary: ""})
		require.NoError(t, err)
		assert.Empty(t, edited.Tags)
		assert.NotEqual(t, "手写摘要", edited.Summary)
		assert.Equal(t, saved.Content, edited.Content)

		got, err := env.posts.LoadPostContent(ctx, saved.ID, alice)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.Tags)
	})
}

func TestPostService_QuotaFallback(t *testing.T) {
	ctx := context.Background()
	env := newQuotaTestEnv(t, 2048)
	image := "data:image/png;base64," + strings.Repeat("A", 4096)

	t.Run("embedded images stripped then saved", func(t *testing.T) {
		p := newPost("q1", "带图的帖子", "")
		p.Author = model.AuthorSnapshot{ID: "7", Name: "画师", Avatar: image}
		p.Content = "hello ![pic](" + image + ") world"
		saved, err := env.posts.Upsert(ctx, "", p)
		require.NoError(t, err)
		assert.Empty(t, saved.Author.Avatar)
		assert.Equal(t, "hello  world", saved.Content)

		got, err := env.posts.LoadPostContent(ctx, "q1", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hello  world", got.Content)
	})

	t.Run("still too large", func(t *testing.T) {
		p := newPost("q2", "超长正文", "")
		p.Content = strings.Repeat("字", 2048)
		_, err := env.posts.Upsert(ctx, "", p)
		assert.ErrorIs(t, err, ErrStorageFull)

		got, err := env.posts.LoadPostContent(ctx, "q2", "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPostService_Permissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	admin := env.admin(t, "root")

	saved, err := env.posts.Upsert(ctx, alice, newPost("", "爱丽丝的帖子", ""))
	require.NoError(t, err)
	assert.Equal(t, alice, saved.Author.ID)
	assert.Equal(t, "alice", saved.Author.Name)

	t.Run("others cannot edit", func(t *testing.T) {
		_, err := env.posts.Upsert(ctx, bob, &model.Post{ID: saved.ID, Title: "改掉"})
		assert.ErrorIs(t, err, UnauthorizedError)
		assert.ErrorIs(t, env.posts.MarkDeleted(ctx, bob, saved.ID), UnauthorizedError)
		assert.ErrorIs(t, env.posts.SetPinned(ctx, bob, saved.ID, true), UnauthorizedError)
	})

	t.Run("edit keeps author and merges fields", func(t *testing.T) {
		edited, err := env.posts.Upsert(ctx, admin, &model.Post{ID: saved.ID, Title: "管理员改过"})
		require.NoError(t, err)
		assert.Equal(t, "管理员改过", edited.Title)
		assert.Equal(t, alice, edited.Author.ID)
		assert.Equal(t, saved.Content, edited.Content)
		assert.Equal(t, saved.Category, edited.Category)
	})

	t.Run("muted user cannot post", func(t *testing.T) {
		_, err := env.moderation.SetMuted(ctx, admin, bob, true)
		require.NoError(t, err)
		_, err = env.posts.Upsert(ctx, bob, newPost("", "禁言中", ""))
		assert.ErrorIs(t, err, ErrUserMuted)
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := env.posts.Upsert(ctx, "999", newPost("", "无主帖子", ""))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown post", func(t *testing.T) {
		assert.ErrorIs(t, env.posts.MarkDeleted(ctx, alice, "missing"), ErrPostNotFound)
	})

	t.Run("author deletes own post", func(t *testing.T) {
		require.NoError(t, env.posts.MarkDeleted(ctx, alice, saved.ID))
		require.NoError(t, env.posts.MarkDeleted(ctx, alice, saved.ID))
	})
}

func TestPostService_Ordering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cat := config.DefaultCategories[0]
	other := config.DefaultCategories[1]

	old := newPost("old", "旧帖子", "2020-01-01T00:00:00Z")
	mid := newPost("mid", "中间帖子", "2022-01-01T00:00:00Z")
	mid.Category = other
	fresh := newPost("new", "新帖子", "2024-01-01T00:00:00Z")
	weighted := newPost("weighted", "带权重", "2019-01-01T00:00:00Z")
	weighted.IsPinnedGlobally = true
	weighted.Order = 1
	catPinned := newPost("cat-pinned", "分区置顶", "2018-01-01T00:00:00Z")
	catPinned.PinnedInCategories = []string{cat}
	for _, p := range []*model.Post{old, mid, fresh, weighted, catPinned} {
		_, err := env.posts.Upsert(ctx, "", p)
		require.NoError(t, err)
	}

	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"weighted", "new", "mid", "old", "cat-pinned"}, ids(posts))

	require.NoError(t, env.posts.SetPinned(ctx, "", "old", true))
	posts, err = env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"weighted", "old", "new", "mid", "cat-pinned"}, ids(posts))
	assert.True(t, posts[1].IsPinnedGlobally)

	posts, err = env.posts.LoadByCategory(ctx, cat, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"weighted", "old", "cat-pinned", "new"}, ids(posts))

	for _, all := range []string{"all", "全部", ""} {
		posts, err = env.posts.LoadByCategory(ctx, all, "")
		require.NoError(t, err)
		assert.Len(t, posts, 5)
	}

	require.NoError(t, env.posts.SetPinned(ctx, "", "old", false))
	posts, err = env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "weighted", posts[0].ID)
	assert.Equal(t, "new", posts[1].ID)
}

func TestPostService_Visibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	carol := env.login(t, "carol")
	admin := env.admin(t, "root")

	_, err := env.posts.Upsert(ctx, alice, newPost("a1", "爱丽丝", "2024-01-01T00:00:00Z"))
	require.NoError(t, err)
	_, err = env.posts.Upsert(ctx, bob, newPost("b1", "鲍勃", "2024-01-02T00:00:00Z"))
	require.NoError(t, err)
	draft := newPost("b-draft", "草稿箱", "2024-01-03T00:00:00Z")
	draft.Status = consts.PostStatusDraft
	_, err = env.posts.Upsert(ctx, bob, draft)
	require.NoError(t, err)

	t.Run("drafts only for author", func(t *testing.T) {
		posts, err := env.posts.LoadAll(ctx, bob)
		require.NoError(t, err)
		assert.Contains(t, ids(posts), "b-draft")
		posts, err = env.posts.LoadAll(ctx, carol)
		require.NoError(t, err)
		assert.NotContains(t, ids(posts), "b-draft")
	})

	t.Run("block hides both directions", func(t *testing.T) {
		blocked, err := env.social.ToggleBlock(ctx, alice, bob)
		require.NoError(t, err)
		require.True(t, blocked)

		posts, err := env.posts.LoadAll(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids(posts))

		posts, err = env.posts.LoadAll(ctx, bob)
		require.NoError(t, err)
		assert.NotContains(t, ids(posts), "a1")

		posts, err = env.posts.LoadAll(ctx, carol)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a1", "b1"}, ids(posts))

		got, err := env.posts.LoadPostContent(ctx, "b1", alice)
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = env.social.ToggleBlock(ctx, alice, bob)
		require.NoError(t, err)
	})

	t.Run("banned author hidden", func(t *testing.T) {
		_, err := env.moderation.SetBanned(ctx, admin, bob, true)
		require.NoError(t, err)
		posts, err := env.posts.LoadAll(ctx, carol)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids(posts))
		_, err = env.moderation.SetBanned(ctx, admin, bob, false)
		require.NoError(t, err)
	})

	t.Run("stats overlay", func(t *testing.T) {
		_, err := env.stats.Increment(ctx, "a1", model.StatViews, 3)
		require.NoError(t, err)
		got, err := env.posts.LoadPostContent(ctx, "a1", carol)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.EqualValues(t, 3, got.Views)
	})
}

func TestPostService_CacheMerge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cached := []*model.Post{
		{ID: "static-1", Title: "静态", Category: config.DefaultCategories[0], Author: model.AuthorSnapshot{Name: "Bob"}, Date: "2023-01-01"},
		{ID: "shared", Title: "缓存版", Category: config.DefaultCategories[0], Date: "2023-01-02", Likes: 4},
	}
	require.NoError(t, env.postRepo.UpdateCache(ctx, func([]*model.Post) ([]*model.Post, bool, error) {
		return cached, true, nil
	}))
	_, err := env.posts.Upsert(ctx, "", newPost("shared", "本地版", "2023-01-02T00:00:00Z"))
	require.NoError(t, err)

	posts, err := env.posts.LoadAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		if p.ID == "shared" {
			assert.Equal(t, "本地版", p.Title)
			assert.EqualValues(t, 4, p.Likes)
		}
	}

	t.Run("author snapshot update covers cache", func(t *testing.T) {
		n, err := env.posts.UpdateAuthorSnapshot(ctx, model.AuthorSnapshot{ID: "Bob", Name: "bob", Avatar: "a.png"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		got, err := env.posts.LoadPostContent(ctx, "static-1", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "bob", got.Author.Name)
		assert.Equal(t, "a.png", got.Author.Avatar)
	})

	t.Run("missing content without source", func(t *testing.T) {
		got, err := env.posts.LoadPostContent(ctx, "static-1", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.Content)

		got, err = env.posts.LoadPostContent(ctx, "nowhere", "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
