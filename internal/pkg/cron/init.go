package cron

import log "log/slog"

// InitCron 注册任务并启动引擎；启动前先同步刷新一次缓存，避免冷启动时列表为空
func InitCron(mgr *Manager) error {
	log.Info("Cron Jobs starting...")
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	if mgr.Entries() > 0 {
		mgr.cacheRefreshJob.Run()
	}
	mgr.Start()
	return nil
}
