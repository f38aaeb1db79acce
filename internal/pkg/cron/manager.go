package cron

import (
	"Applyhub/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine            *cron.Cron
	contentMetricSpec string
	contentMetricJob  *job.ContentMetricJob
}

func NewCronManager(contentMetricSpec string, contentMetricJob *job.ContentMetricJob) *Manager {
	return &Manager{
		engine:            cron.New(cron.WithSeconds()),
		contentMetricSpec: contentMetricSpec,
		contentMetricJob:  contentMetricJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.contentMetricSpec, s.contentMetricJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
