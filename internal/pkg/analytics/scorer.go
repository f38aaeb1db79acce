package analytics

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/util"
	"cmp"
	"slices"
	"time"
)

// ContentItem 单条内容的累计计数，统计的最小输入单元
type ContentItem struct {
	ID          uint64            `json:"id"`
	Type        model.ContentType `json:"content_type"`
	Title       string            `json:"title"`
	Views       int64             `json:"views"`
	Likes       int64             `json:"likes"`
	Shares      int64             `json:"shares"`
	Comments    int64             `json:"comments"`
	Bookmarks   int64             `json:"bookmarks"`
	PublishedAt time.Time         `json:"published_at"`
}

// ItemFromContent 从持久化模型转换
func ItemFromContent(c *model.Content) ContentItem {
	return ContentItem{
		ID:          c.ID,
		Type:        c.ContentType,
		Title:       c.Title,
		Views:       c.ViewsCount,
		Likes:       c.LikesCount,
		Shares:      c.SharesCount,
		Comments:    c.CommentsCount,
		Bookmarks:   c.BookmarksCount,
		PublishedAt: c.PublishedAt,
	}
}

// Score 互动分 = 点赞 + 分享 + 评论
func Score(item ContentItem) int64 {
	return item.Likes + item.Shares + item.Comments
}

// EngagementRate 互动率（百分比），浏览为 0 时返回 0
func EngagementRate(item ContentItem) float64 {
	return ratio(Score(item), item.Views)
}

// compareRank 分数降序，其次发布时间降序，最后按类型和 ID 升序，保证全序
func compareRank(a, b ContentItem) int {
	if c := cmp.Compare(Score(b), Score(a)); c != 0 {
		return c
	}
	if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Rank 返回排好序的副本，不修改入参
func Rank(items []ContentItem) []ContentItem {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, compareRank)
	return ranked
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return util.Round2(float64(num) / float64(den) * 100)
}
