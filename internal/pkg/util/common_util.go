package util

import (
	"math"
	"time"
)

// DayStart 返回 t 所在日期的零点（保留时区）
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MetricDay 日统计统一按 UTC 自然日切分
func MetricDay(t time.Time) time.Time {
	return DayStart(t.UTC())
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
