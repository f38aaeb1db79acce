package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContentType 内容类型，封闭枚举
type ContentType string

const (
	ContentNews        ContentType = "news"
	ContentEvent       ContentType = "event"
	ContentOpportunity ContentType = "opportunity"
	ContentDiaspora    ContentType = "diaspora"
	ContentPost        ContentType = "post"
)

// AllContentTypes 按固定顺序输出，统计结果依赖此顺序
var AllContentTypes = []ContentType{
	ContentNews,
	ContentEvent,
	ContentOpportunity,
	ContentDiaspora,
	ContentPost,
}

func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(s)
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

func (c ContentType) Valid() bool {
	switch c {
	case ContentNews, ContentEvent, ContentOpportunity, ContentDiaspora, ContentPost:
		return true
	default:
		return false
	}
}

func (c ContentType) String() string {
	return string(c)
}

func (c ContentType) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid content type %q", string(c))
	}
	return string(c), nil
}

func (c *ContentType) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ContentType", value)
	}
	ct, err := ParseContentType(raw)
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// ContentRef 指向一条内容
type ContentRef struct {
	Type ContentType `json:"content_type"`
	ID   uint64      `json:"content_id"`
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// ParseContentRef 解析 "type:id" 形式的引用
func ParseContentRef(s string) (ContentRef, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok {
		return ContentRef{}, fmt.Errorf("malformed content ref %q", s)
	}
	ct, err := ParseContentType(typ)
	if err != nil {
		return ContentRef{}, err
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return ContentRef{}, fmt.Errorf("malformed content id in %q", s)
	}
	return ContentRef{Type: ct, ID: n}, nil
}

// Content 用户发布的内容（新闻/活动/机会/侨民动态/帖子）及其累计计数
type Content struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ContentType    ContentType `gorm:"primaryKey;type:varchar(32)" json:"content_type"`
	UserID         uint64      `gorm:"not null;index:idx_user_id" json:"user_id"`
	Title          string      `gorm:"type:varchar(255)" json:"title"`
	ViewsCount     int64       `gorm:"not null;default:0" json:"views_count"`
	LikesCount     int64       `gorm:"not null;default:0" json:"likes_count"`
	SharesCount    int64       `gorm:"not null;default:0" json:"shares_count"`
	CommentsCount  int64       `gorm:"not null;default:0" json:"comments_count"`
	BookmarksCount int64       `gorm:"not null;default:0" json:"bookmarks_count"`
	PublishedAt    time.Time   `gorm:"not null;index:idx_published_at" json:"published_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Content) TableName() string {
	return "contents"
}

func (c *Content) Ref() ContentRef {
	return ContentRef{Type: c.ContentType, ID: c.ID}
}
