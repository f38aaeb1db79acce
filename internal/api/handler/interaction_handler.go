package handler

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/api/middleware"
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/response"
	"Applyhub/internal/service"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactionSvc service.InteractionService
}

func NewInteractionHandler(interactionSvc service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		interactionSvc: interactionSvc,
	}
}

// Toggle 点赞/收藏切换，返回最终状态
func (h *InteractionHandler) Toggle(c *gin.Context) {
	var req dto.ToggleInteractionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	contentType, err := model.ParseContentType(req.ContentType)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	kind, err := model.ParseInteractionKind(req.Kind)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	ref := model.ContentRef{Type: contentType, ID: req.ContentID}
	res, err := h.interactionSvc.Toggle(c.Request.Context(), middleware.GetActor(c).UserID, ref, kind)
	if err != nil {
		// 回滚后的状态一并返回，客户端据此恢复界面
		if res != nil {
			response.ErrorWithData(c, err, dto.ToggleResultDTO{Active: res.Active})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToggleResultDTO{Active: res.Active})
}

// GetState 当前用户对某条内容的点赞/收藏状态
func (h *InteractionHandler) GetState(c *gin.Context) {
	var q dto.InteractionStateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	contentType, err := model.ParseContentType(q.ContentType)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	ref := model.ContentRef{Type: contentType, ID: q.ContentID}
	res, err := h.interactionSvc.GetState(c.Request.Context(), middleware.GetActor(c).UserID, ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListBookmarks 我的收藏
func (h *InteractionHandler) ListBookmarks(c *gin.Context) {
	page, pageSize, ok := pageParams(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.interactionSvc.ListBookmarks(c.Request.Context(), middleware.GetActor(c).UserID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
