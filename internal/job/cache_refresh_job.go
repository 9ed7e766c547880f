package job

import (
	"AmineForum/internal/pkg/logger"
	"AmineForum/internal/service"
	"context"
	log "log/slog"
	"sync/atomic"
	"time"
)

// CacheRefreshJob 定时从静态内容源重建帖子缓存
type CacheRefreshJob struct {
	postSvc service.PostService
	running atomic.Bool
}

func NewCacheRefreshJob(postSvc service.PostService) *CacheRefreshJob {
	return &CacheRefreshJob{postSvc: postSvc}
}

// Run 上一轮未结束时直接跳过
func (s *CacheRefreshJob) Run() {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("cache refresh still running, skip")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(logger.WithTraceID(context.Background(), "job-cache-"), 5*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := s.postSvc.RefreshCache(ctx)
	if err != nil {
		log.ErrorContext(ctx, "refresh posts cache error", "err", err)
		return
	}
	log.InfoContext(ctx, "posts cache refreshed", "count", n, "cost", time.Since(start).String())
}
