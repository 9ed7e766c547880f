package content

import (
	"AmineForum/internal/model"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPSource 从静态站点读取 /posts/ 目录
type HTTPSource struct {
	client *resty.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json, text/markdown, */*")
	return &HTTPSource{client: client}
}

func (s *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET %s: %s", path, resp.Status())
	}
	return resp.Body(), nil
}

func (s *HTTPSource) Metadata(ctx context.Context) ([]model.PostMetadata, error) {
	raw, err := s.get(ctx, "/posts/metadata.json")
	if err != nil {
		return nil, err
	}
	return parseMetadata(raw)
}

func (s *HTTPSource) Fetch(ctx context.Context, postID string) (*model.Post, error) {
	escaped := url.PathEscape(postID)
	meta, err := s.get(ctx, "/posts/"+escaped+".json")
	if err != nil {
		return nil, err
	}
	markdown, err := s.get(ctx, "/posts/"+escaped+".md")
	if err != nil {
		log.DebugContext(ctx, "post markdown unavailable", "post_id", postID, "err", err)
		markdown = nil
	}
	return assemble(postID, meta, string(markdown))
}
