package analytics

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/util"
	"time"
)

// Counters 用户维度的原始累计值，缺省为 0
type Counters struct {
	Views        int64
	Likes        int64
	Shares       int64
	Comments     int64
	Bookmarks    int64
	Followers    int64
	Following    int64
	Posts        int64
	Applications int64
}

type Overview struct {
	TotalViews        int64 `json:"total_views"`
	TotalLikes        int64 `json:"total_likes"`
	TotalShares       int64 `json:"total_shares"`
	TotalComments     int64 `json:"total_comments"`
	TotalBookmarks    int64 `json:"total_bookmarks"`
	TotalFollowers    int64 `json:"total_followers"`
	TotalFollowing    int64 `json:"total_following"`
	TotalPosts        int64 `json:"total_posts"`
	TotalApplications int64 `json:"total_applications"`
}

type ContentPerformance struct {
	ContentType   model.ContentType `json:"content_type"`
	Count         int               `json:"count"`
	Views         int64             `json:"views"`
	Likes         int64             `json:"likes"`
	Shares        int64             `json:"shares"`
	Comments      int64             `json:"comments"`
	AvgEngagement float64           `json:"avg_engagement"`
}

// DailyCounter 某一天的增量，同一天可以有多条，统计时累加
type DailyCounter struct {
	Date         time.Time
	Views        int64
	Likes        int64
	Shares       int64
	Comments     int64
	PostsCreated int64
}

type TimeSeriesPoint struct {
	Date         string `json:"date"`
	Views        int64  `json:"views"`
	Likes        int64  `json:"likes"`
	Shares       int64  `json:"shares"`
	Comments     int64  `json:"comments"`
	PostsCreated int64  `json:"posts_created"`
}

type TopContent struct {
	ID              uint64            `json:"id"`
	ContentType     model.ContentType `json:"content_type"`
	Title           string            `json:"title"`
	Views           int64             `json:"views"`
	Likes           int64             `json:"likes"`
	Shares          int64             `json:"shares"`
	Comments        int64             `json:"comments"`
	EngagementScore int64             `json:"engagement_score"`
	EngagementRate  float64           `json:"engagement_rate"`
	PublishedAt     time.Time         `json:"published_at"`
}

type ApplicationAnalytics struct {
	Total              int     `json:"total"`
	Draft              int     `json:"draft"`
	Submitted          int     `json:"submitted"`
	UnderReview        int     `json:"under_review"`
	Shortlisted        int     `json:"shortlisted"`
	InterviewScheduled int     `json:"interview_scheduled"`
	Accepted           int     `json:"accepted"`
	Rejected           int     `json:"rejected"`
	Withdrawn          int     `json:"withdrawn"`
	AcceptanceRate     float64 `json:"acceptance_rate"`
	AvgResponseTime    float64 `json:"avg_response_time"` // 天
}

// PeriodTotals 一个统计周期内的增量
type PeriodTotals struct {
	Followers int64
	Posts     int64
	Views     int64
	Likes     int64
	Shares    int64
	Comments  int64
}

func (p PeriodTotals) Engagement() int64 {
	return p.Likes + p.Shares + p.Comments
}

type GrowthMetrics struct {
	FollowersGrowth  float64 `json:"followers_growth"`
	PostsGrowth      float64 `json:"posts_growth"`
	ViewsGrowth      float64 `json:"views_growth"`
	EngagementGrowth float64 `json:"engagement_growth"`
}

// ComputeOverview 纯求和
func ComputeOverview(c Counters) Overview {
	return Overview{
		TotalViews:        c.Views,
		TotalLikes:        c.Likes,
		TotalShares:       c.Shares,
		TotalComments:     c.Comments,
		TotalBookmarks:    c.Bookmarks,
		TotalFollowers:    c.Followers,
		TotalFollowing:    c.Following,
		TotalPosts:        c.Posts,
		TotalApplications: c.Applications,
	}
}

// SumItems 把内容计数累加进 Counters，Posts 取内容条数
func SumItems(c Counters, items []ContentItem) Counters {
	for _, it := range items {
		c.Views += it.Views
		c.Likes += it.Likes
		c.Shares += it.Shares
		c.Comments += it.Comments
		c.Bookmarks += it.Bookmarks
	}
	c.Posts = int64(len(items))
	return c
}

// GroupByType 按内容类型分组，非法类型丢弃
func GroupByType(items []ContentItem) map[model.ContentType][]ContentItem {
	grouped := make(map[model.ContentType][]ContentItem)
	for _, it := range items {
		if !it.Type.Valid() {
			continue
		}
		grouped[it.Type] = append(grouped[it.Type], it)
	}
	return grouped
}

// ComputeContentPerformance 按 model.AllContentTypes 的顺序输出，没有内容的类型不输出
func ComputeContentPerformance(itemsByType map[model.ContentType][]ContentItem) []ContentPerformance {
	res := make([]ContentPerformance, 0, len(itemsByType))
	for _, ct := range model.AllContentTypes {
		items := itemsByType[ct]
		if len(items) == 0 {
			continue
		}
		p := ContentPerformance{ContentType: ct, Count: len(items)}
		for _, it := range items {
			p.Views += it.Views
			p.Likes += it.Likes
			p.Shares += it.Shares
			p.Comments += it.Comments
		}
		p.AvgEngagement = ratio(p.Likes+p.Shares+p.Comments, p.Views)
		res = append(res, p)
	}
	return res
}

// ComputeTimeSeries [start, end] 闭区间内每天一个点，缺失的日期补 0
func ComputeTimeSeries(raw []DailyCounter, start, end time.Time) []TimeSeriesPoint {
	start = util.DayStart(start)
	end = util.DayStart(end.In(start.Location()))
	if end.Before(start) {
		return []TimeSeriesPoint{}
	}

	dataMap := make(map[string]*TimeSeriesPoint, len(raw))
	for _, r := range raw {
		key := r.Date.In(start.Location()).Format(time.DateOnly)
		p, ok := dataMap[key]
		if !ok {
			p = &TimeSeriesPoint{Date: key}
			dataMap[key] = p
		}
		p.Views += r.Views
		p.Likes += r.Likes
		p.Shares += r.Shares
		p.Comments += r.Comments
		p.PostsCreated += r.PostsCreated
	}

	res := make([]TimeSeriesPoint, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		if p, ok := dataMap[key]; ok {
			res = append(res, *p)
		} else {
			res = append(res, TimeSeriesPoint{Date: key})
		}
	}
	return res
}

// ComputeTopContent 按互动分排序取前 limit 条
func ComputeTopContent(items []ContentItem, limit int) []TopContent {
	if limit <= 0 {
		return []TopContent{}
	}
	ranked := Rank(items)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	res := make([]TopContent, 0, len(ranked))
	for _, it := range ranked {
		res = append(res, TopContent{
			ID:              it.ID,
			ContentType:     it.Type,
			Title:           it.Title,
			Views:           it.Views,
			Likes:           it.Likes,
			Shares:          it.Shares,
			Comments:        it.Comments,
			EngagementScore: Score(it),
			EngagementRate:  EngagementRate(it),
			PublishedAt:     it.PublishedAt,
		})
	}
	return res
}

// ComputeApplicationAnalytics 每条申请只计入一个状态。
// nil 条目不是申请，不计入 Total，其余各状态计数之和恒等于 Total
func ComputeApplicationAnalytics(apps []*model.Application) ApplicationAnalytics {
	var a ApplicationAnalytics
	var responseHours float64
	var responded int

	for _, app := range apps {
		if app == nil {
			continue
		}
		a.Total++
		switch app.Status {
		case model.StatusDraft:
			a.Draft++
		case model.StatusSubmitted:
			a.Submitted++
		case model.StatusUnderReview:
			a.UnderReview++
		case model.StatusShortlisted:
			a.Shortlisted++
		case model.StatusInterviewScheduled:
			a.InterviewScheduled++
		case model.StatusAccepted:
			a.Accepted++
		case model.StatusRejected:
			a.Rejected++
		case model.StatusWithdrawn:
			a.Withdrawn++
		default:
			// 非法状态无法落库，出现即视为未提交
			a.Draft++
		}

		if app.SubmittedAt != nil && app.ReviewedAt != nil && !app.ReviewedAt.Before(*app.SubmittedAt) {
			responseHours += app.ReviewedAt.Sub(*app.SubmittedAt).Hours()
			responded++
		}
	}

	a.AcceptanceRate = ratio(int64(a.Accepted), int64(a.Total-a.Draft))
	if responded > 0 {
		a.AvgResponseTime = util.Round2(responseHours / 24 / float64(responded))
	}
	return a
}

// GrowthRate 环比百分比，上期为 0 时返回 0
func GrowthRate(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return util.Round2(float64(current-previous) / float64(previous) * 100)
}

func ComputeGrowthMetrics(current, previous PeriodTotals) GrowthMetrics {
	return GrowthMetrics{
		FollowersGrowth:  GrowthRate(current.Followers, previous.Followers),
		PostsGrowth:      GrowthRate(current.Posts, previous.Posts),
		ViewsGrowth:      GrowthRate(current.Views, previous.Views),
		EngagementGrowth: GrowthRate(current.Engagement(), previous.Engagement()),
	}
}

// TotalsFromDaily 汇总 [start, end] 内的每日增量，Followers 由调用方填写
func TotalsFromDaily(raw []DailyCounter, start, end time.Time) PeriodTotals {
	start = util.DayStart(start)
	end = util.DayStart(end.In(start.Location())).AddDate(0, 0, 1)
	var t PeriodTotals
	for _, r := range raw {
		d := r.Date.In(start.Location())
		if d.Before(start) || !d.Before(end) {
			continue
		}
		t.Views += r.Views
		t.Likes += r.Likes
		t.Shares += r.Shares
		t.Comments += r.Comments
		t.Posts += r.PostsCreated
	}
	return t
}
