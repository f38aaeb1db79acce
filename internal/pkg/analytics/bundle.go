package analytics

import (
	"Applyhub/internal/model"
	"time"
)

// Bundle 看板需要的全部数据
type Bundle struct {
	Period               string               `json:"period"`
	StartDate            string               `json:"start_date"`
	EndDate              string               `json:"end_date"`
	Overview             Overview             `json:"overview"`
	ContentPerformance   []ContentPerformance `json:"content_performance"`
	TimeSeries           []TimeSeriesPoint    `json:"time_series"`
	TopContent           []TopContent         `json:"top_content"`
	ApplicationAnalytics ApplicationAnalytics `json:"application_analytics"`
	GrowthMetrics        GrowthMetrics        `json:"growth_metrics"`
	GeneratedAt          time.Time            `json:"generated_at"`
}

// Input BuildBundle 的全部输入
type Input struct {
	Period       string
	Start, End   time.Time
	Counters     Counters
	Items        []ContentItem
	Daily        []DailyCounter
	Applications []*model.Application
	Current      PeriodTotals
	Previous     PeriodTotals
	TopLimit     int
	Now          time.Time
}

// BuildBundle 组装看板数据，新用户也返回完整的零值结构
func BuildBundle(in Input) *Bundle {
	counters := SumItems(in.Counters, in.Items)
	counters.Applications = int64(len(in.Applications))

	return &Bundle{
		Period:               in.Period,
		StartDate:            in.Start.Format(time.DateOnly),
		EndDate:              in.End.Format(time.DateOnly),
		Overview:             ComputeOverview(counters),
		ContentPerformance:   ComputeContentPerformance(GroupByType(in.Items)),
		TimeSeries:           ComputeTimeSeries(in.Daily, in.Start, in.End),
		TopContent:           ComputeTopContent(in.Items, in.TopLimit),
		ApplicationAnalytics: ComputeApplicationAnalytics(in.Applications),
		GrowthMetrics:        ComputeGrowthMetrics(in.Current, in.Previous),
		GeneratedAt:          in.Now,
	}
}

// PostsCreatedDaily 把内容的发布时间转成每日发布数
func PostsCreatedDaily(items []ContentItem) []DailyCounter {
	res := make([]DailyCounter, 0, len(items))
	for _, it := range items {
		res = append(res, DailyCounter{Date: it.PublishedAt, PostsCreated: 1})
	}
	return res
}
