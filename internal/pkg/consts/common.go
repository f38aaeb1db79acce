package consts

// 角色
const (
	RoleApplicant = "USER"
	RoleReviewer  = "REVIEWER"
	RoleAdmin     = "ADMIN"
)

// 统计周期
const (
	Period7Days   = "7days"
	Period30Days  = "30days"
	Period90Days  = "90days"
	Period365Days = "365days"

	DefaultPeriod = Period30Days
)

// PeriodDays 周期对应的天数
var PeriodDays = map[string]int{
	Period7Days:   7,
	Period30Days:  30,
	Period90Days:  90,
	Period365Days: 365,
}

// canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// 互动锁模式
const (
	LockModeLocal = "local"
	LockModeRedis = "redis"
)

// DefaultPageSize 未传 page_size 时的分页大小，上限由 dto.PageQuery 的 binding 约束
const DefaultPageSize = 20
