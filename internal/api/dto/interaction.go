package dto

import "time"

// ToggleInteractionDTO 点赞/收藏切换请求
type ToggleInteractionDTO struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentID   uint64 `json:"content_id" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=like bookmark"`
}

// ToggleResultDTO 切换后的最终状态
type ToggleResultDTO struct {
	Active bool `json:"active"`
}

// InteractionStateQuery 查询互动状态
type InteractionStateQuery struct {
	ContentType string `form:"content_type" binding:"required"`
	ContentID   uint64 `form:"content_id" binding:"required"`
}

// InteractionStateDTO 当前用户对内容的互动状态
type InteractionStateDTO struct {
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// BookmarkDTO 收藏列表项，内容已删除时 Title 为空
type BookmarkDTO struct {
	ContentType  string    `json:"content_type"`
	ContentID    uint64    `json:"content_id"`
	Title        string    `json:"title"`
	OwnerID      uint64    `json:"owner_id"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}
