package kv

import (
	"context"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// GetJSON 读取并解码，Key 不存在或内容损坏时返回 false
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.WarnContext(ctx, "corrupt value ignored", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return s.Set(ctx, key, raw)
}

// UpdateJSON 读改写一个 JSON 文档；cur 在 Key 缺失或损坏时为零值。
// fn 返回 ErrSkip 时不写入；返回 ErrDelete 时删除该 Key。
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(cur *T) error) error {
	return s.Update(ctx, key, func(old []byte, exists bool) ([]byte, error) {
		var cur T
		if exists {
			if err := json.Unmarshal(old, &cur); err != nil {
				log.WarnContext(ctx, "corrupt value reset", "key", key, "err", err)
				var zero T
				cur = zero
			}
		}
		if err := fn(&cur); err != nil {
			if errors.Is(err, ErrDelete) {
				return nil, nil
			}
			return nil, err
		}
		return json.Marshal(cur)
	})
}

// ErrDelete 由 UpdateJSON 的回调返回，表示删除该 Key
var ErrDelete = errors.New("kv: delete key")
