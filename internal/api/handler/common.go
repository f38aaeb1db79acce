package handler

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/pkg/consts"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageParams 读取分页参数，缺省第一页、默认页大小
func pageParams(c *gin.Context) (int, int, bool) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return 0, 0, false
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = consts.DefaultPageSize
	}
	return q.Page, q.PageSize, true
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
