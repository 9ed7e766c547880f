// Package content 读取静态帖子内容（metadata.json、{id}.json、{id}.md）。
// 读取失败一律视为不存在，不区分临时错误。
package content

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotFound 内容源中不存在该帖子
var ErrNotFound = errors.New("content: not found")

// Source 外部帖子内容来源
type Source interface {
	Metadata(ctx context.Context) ([]model.PostMetadata, error)
	Fetch(ctx context.Context, postID string) (*model.Post, error)
}

type metadataFile struct {
	Posts []model.PostMetadata `json:"posts"`
}

func parseMetadata(raw []byte) ([]model.PostMetadata, error) {
	var file metadataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	out := make([]model.PostMetadata, 0, len(file.Posts))
	for _, m := range file.Posts {
		if m.ID == "" {
			continue
		}
		if m.PinnedIn == nil {
			m.PinnedIn = []string{}
		}
		out = append(out, m)
	}
	return out, nil
}

// assemble {id}.json 为必需，{id}.md 可缺省
func assemble(postID string, meta []byte, markdown string) (*model.Post, error) {
	var post model.Post
	if err := json.Unmarshal(meta, &post); err != nil {
		return nil, err
	}
	post.ID = postID
	post.Content = markdown
	post.Normalize()
	return &post, nil
}

// ApplyMetadata 以 metadata 的 pinnedIn/order 覆盖帖子
func ApplyMetadata(post *model.Post, meta *model.PostMetadata) {
	if meta == nil {
		post.IsPinnedGlobally = false
		post.PinnedInCategories = []string{}
		post.Order = consts.DefaultPostOrder
		return
	}
	post.PinnedInCategories = append([]string{}, meta.PinnedIn...)
	post.IsPinnedGlobally = len(meta.PinnedIn) > 0
	post.Order = meta.Order
	if post.Order == 0 {
		post.Order = consts.DefaultPostOrder
	}
}

func objectName(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
