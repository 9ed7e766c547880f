package repository

import (
	"AmineForum/internal/pkg/kv"
	"bytes"
	"context"
	log "log/slog"

	"github.com/pkg/errors"
)

// MoveKey 将 src 的内容迁移到 dst；dst 已有数据时保留 dst 并丢弃 src
func MoveKey(ctx context.Context, store kv.Store, src, dst string) error {
	if src == dst {
		return nil
	}
	raw, ok, err := store.Get(ctx, src)
	if err != nil {
		return errors.Wrapf(err, "read %s", src)
	}
	if !ok {
		return nil
	}

	conflict := false
	err = store.Update(ctx, dst, func(old []byte, exists bool) ([]byte, error) {
		if exists && !isEmptyJSON(old) {
			conflict = true
			return nil, kv.ErrSkip
		}
		conflict = false
		return raw, nil
	})
	if err != nil {
		return errors.Wrapf(err, "write %s", dst)
	}
	if conflict {
		log.WarnContext(ctx, "migration destination already has data, source dropped", "src", src, "dst", dst)
	}
	return store.Delete(ctx, src)
}

func isEmptyJSON(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "[]", "{}", `""`:
		return true
	}
	return false
}

// replaceID 将列表中的 oldID 替换为 newID 并去重，返回是否有改动
func replaceID(list []string, oldID, newID string) ([]string, bool) {
	changed := false
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, id := range list {
		if id == oldID {
			id = newID
			changed = true
		}
		if _, ok := seen[id]; ok {
			changed = true
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, changed
}
