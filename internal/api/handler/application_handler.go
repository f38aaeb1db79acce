package handler

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/api/middleware"
	"Applyhub/internal/pkg/response"
	"Applyhub/internal/service"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationSvc service.ApplicationService
}

func NewApplicationHandler(applicationSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationSvc: applicationSvc,
	}
}

// CreateApplication 创建申请
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.applicationSvc.CreateApplication(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// TransitionStatus 修改申请状态
func (h *ApplicationHandler) TransitionStatus(c *gin.Context) {
	appID, ok := uintParam(c, "id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.TransitionStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.applicationSvc.TransitionStatus(c.Request.Context(), middleware.GetActor(c), appID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetApplication 申请详情
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	appID, ok := uintParam(c, "id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.applicationSvc.GetApplication(c.Request.Context(), middleware.GetActor(c), appID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListMyApplications 当前用户的申请
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	res, err := h.applicationSvc.ListMyApplications(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListByOpportunity 某个机会下的申请
func (h *ApplicationHandler) ListByOpportunity(c *gin.Context) {
	oppID, ok := uintParam(c, "opportunity_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.applicationSvc.ListByOpportunity(c.Request.Context(), middleware.GetActor(c), oppID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
