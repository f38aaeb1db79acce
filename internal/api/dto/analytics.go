package dto

// AnalyticsQuery 看板查询参数
type AnalyticsQuery struct {
	Period string `form:"period" binding:"omitempty,oneof=7days 30days 90days 365days"`
}
