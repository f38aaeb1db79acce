package handler

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/api/middleware"
	"Applyhub/internal/pkg/response"
	"Applyhub/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// GetAnalytics 个人看板
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	var q dto.AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.analyticsSvc.GetAnalytics(c.Request.Context(), middleware.GetActor(c).UserID, q.Period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
