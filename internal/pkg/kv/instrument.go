package kv

import (
	"AmineForum/internal/pkg/metrics"
	"context"
	"time"

	"github.com/pkg/errors"
)

type instrumented struct {
	Store
	driver string
}

// Instrument 为每次操作记录 Prometheus 指标
func Instrument(s Store, driver string) Store {
	return &instrumented{Store: s, driver: driver}
}

func (m *instrumented) observe(op string, start time.Time, err error) {
	metrics.KVDuration.WithLabelValues(m.driver, op).Observe(time.Since(start).Seconds())
	result := metrics.Result(err)
	if errors.Is(err, ErrQuotaExceeded) {
		result = "quota"
	}
	metrics.KVOperations.WithLabelValues(m.driver, op, result).Inc()
}

func (m *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := m.Store.Get(ctx, key)
	if err == nil && !ok {
		metrics.KVDuration.WithLabelValues(m.driver, "get").Observe(time.Since(start).Seconds())
		metrics.KVOperations.WithLabelValues(m.driver, "get", "miss").Inc()
		return value, ok, err
	}
	m.observe("get", start, err)
	return value, ok, err
}

func (m *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := m.Store.Set(ctx, key, value)
	m.observe("set", start, err)
	return err
}

func (m *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.Store.Delete(ctx, key)
	m.observe("delete", start, err)
	return err
}

func (m *instrumented) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := m.Store.Keys(ctx, prefix)
	m.observe("keys", start, err)
	return keys, err
}

func (m *instrumented) Update(ctx context.Context, key string, fn UpdateFunc) error {
	start := time.Now()
	err := m.Store.Update(ctx, key, fn)
	m.observe("update", start, err)
	return err
}
