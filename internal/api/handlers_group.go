package api

import "Applyhub/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ApplicationHandler *handler.ApplicationHandler
	InteractionHandler *handler.InteractionHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	SysBoxHandler      *handler.SysBoxHandler
	JobHandler         *handler.JobHandler
}
