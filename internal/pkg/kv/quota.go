package kv

import (
	"context"
)

// quotaStore 限制单个值的大小，模拟浏览器存储的容量上限
type quotaStore struct {
	Store
	max int
}

// WithQuota max <= 0 时原样返回
func WithQuota(s Store, max int) Store {
	if max <= 0 {
		return s
	}
	return &quotaStore{Store: s, max: max}
}

func (q *quotaStore) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > q.max {
		return ErrQuotaExceeded
	}
	return q.Store.Set(ctx, key, value)
}

func (q *quotaStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return q.Store.Update(ctx, key, func(old []byte, exists bool) ([]byte, error) {
		next, err := fn(old, exists)
		if err != nil {
			return nil, err
		}
		if len(next) > q.max {
			return nil, ErrQuotaExceeded
		}
		return next, nil
	})
}
