package cron

import (
	"AmineForum/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine          *cron.Cron
	cacheRefreshJob *job.CacheRefreshJob
	cacheRefresh    string
}

// NewCronManager spec 为带秒的 cron 表达式，为空时不注册缓存刷新
func NewCronManager(cacheRefreshJob *job.CacheRefreshJob, spec string) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		cacheRefreshJob: cacheRefreshJob,
		cacheRefresh:    spec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if s.cacheRefresh == "" {
		log.Warn("cache refresh job disabled")
		return nil
	}
	if _, err := s.engine.AddJob(s.cacheRefresh, s.cacheRefreshJob); err != nil {
		return err
	}
	return nil
}

// Entries 已注册任务数量
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
