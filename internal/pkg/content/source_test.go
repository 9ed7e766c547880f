package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/metadata.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts":[{"id":"welcome","pinnedIn":["社团活动"],"order":1},{"id":"plain"}]}`))
	})
	mux.HandleFunc("/posts/welcome.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"欢迎","category":"社团活动","author":"社长","date":"2024-03-01","views":12}`))
	})
	mux.HandleFunc("/posts/welcome.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# 欢迎加入"))
	})
	mux.HandleFunc("/posts/plain.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"无正文","category":"论坛闲聊","author":{"id":"2","name":"Amy"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_Metadata(t *testing.T) {
	src := NewHTTPSource(newStaticServer(t).URL, time.Second)

	metas, err := src.Metadata(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, []string{"社团活动"}, metas[0].PinnedIn)
	assert.Equal(t, []string{}, metas[1].PinnedIn)
}

func TestHTTPSource_Fetch(t *testing.T) {
	src := NewHTTPSource(newStaticServer(t).URL, time.Second)
	ctx := context.Background()

	post, err := src.Fetch(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "welcome", post.ID)
	assert.Equal(t, "社长", post.Author.Name)
	assert.Equal(t, "# 欢迎加入", post.Content)
	assert.Equal(t, int64(12), post.Views)

	post, err = src.Fetch(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "", post.Content)
	assert.Equal(t, "2", post.Author.ID)

	_, err = src.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyMetadata(t *testing.T) {
	src := NewHTTPSource(newStaticServer(t).URL, time.Second)
	ctx := context.Background()
	metas, err := src.Metadata(ctx)
	require.NoError(t, err)

	post, err := src.Fetch(ctx, "welcome")
	require.NoError(t, err)
	ApplyMetadata(post, &metas[0])
	assert.True(t, post.IsPinnedGlobally)
	assert.Equal(t, 1, post.Order)

	ApplyMetadata(post, &metas[1])
	assert.False(t, post.IsPinnedGlobally)
	assert.Equal(t, 999, post.Order)
}
