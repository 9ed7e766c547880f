// Package kv 是论坛持久化的唯一入口：按 Key 存取 JSON 文档，
// 所有读改写都经由 Update 原子完成。
package kv

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrSkip 由 UpdateFunc 返回，表示无需写入，Update 返回 nil
	ErrSkip = errors.New("kv: skip write")
	// ErrQuotaExceeded 单个值超过配置的容量上限
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	// ErrClosed 存储已关闭
	ErrClosed = errors.New("kv: store closed")
)

// UpdateFunc 接收旧值，返回新值；返回 nil 表示删除该 Key。
// 冲突重试时可能被多次调用，不应有副作用。
type UpdateFunc func(old []byte, exists bool) ([]byte, error)

// Store 键值存储
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys 返回以 prefix 开头的全部 Key，顺序不保证
	Keys(ctx context.Context, prefix string) ([]string, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

const maxUpdateRetries = 32

// apply 执行一次 UpdateFunc，统一 ErrSkip 与删除语义
func apply(fn UpdateFunc, old []byte, exists bool) (next []byte, write bool, err error) {
	next, err = fn(old, exists)
	if errors.Is(err, ErrSkip) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}
