package handler

import (
	"Applyhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type jobRunner interface {
	Run()
}

type JobHandler struct {
	contentMetricJob jobRunner
}

func NewJobHandler(contentMetricJob jobRunner) *JobHandler {
	return &JobHandler{
		contentMetricJob: contentMetricJob,
	}
}

// TriggerContentMetric 手动触发一次计数重算，任务在后台执行
func (h *JobHandler) TriggerContentMetric(c *gin.Context) {
	go h.contentMetricJob.Run()
	response.Success(c, nil)
}
