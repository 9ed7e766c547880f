package content

import (
	"AmineForum/internal/model"
	"context"
	"io"
	log "log/slog"

	"github.com/minio/minio-go/v7"
)

// MinIOSource 与 HTTPSource 相同的目录结构，存放在对象存储桶中
type MinIOSource struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinIOSource(client *minio.Client, bucket, prefix string) *MinIOSource {
	return &MinIOSource{client: client, bucket: bucket, prefix: prefix}
}

func (s *MinIOSource) read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(s.prefix, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	raw, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (s *MinIOSource) Metadata(ctx context.Context) ([]model.PostMetadata, error) {
	raw, err := s.read(ctx, "metadata.json")
	if err != nil {
		return nil, err
	}
	return parseMetadata(raw)
}

func (s *MinIOSource) Fetch(ctx context.Context, postID string) (*model.Post, error) {
	meta, err := s.read(ctx, postID+".json")
	if err != nil {
		return nil, err
	}
	markdown, err := s.read(ctx, postID+".md")
	if err != nil {
		log.DebugContext(ctx, "post markdown unavailable", "post_id", postID, "err", err)
		markdown = nil
	}
	return assemble(postID, meta, string(markdown))
}
