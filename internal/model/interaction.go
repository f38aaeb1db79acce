package model

import (
	"fmt"
	"time"
)

// InteractionKind 互动类型
type InteractionKind string

const (
	KindLike     InteractionKind = "like"
	KindBookmark InteractionKind = "bookmark"
)

func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
	return k, nil
}

func (k InteractionKind) Valid() bool {
	return k == KindLike || k == KindBookmark
}

func (k InteractionKind) String() string {
	return string(k)
}

// Interaction 点赞/收藏记录，存在即表示已点赞/已收藏
type Interaction struct {
	UserID      uint64          `gorm:"primaryKey" json:"user_id"`
	ContentType ContentType     `gorm:"primaryKey;type:varchar(32);index:idx_content,priority:1" json:"content_type"`
	ContentID   uint64          `gorm:"primaryKey;index:idx_content,priority:2" json:"content_id"`
	Kind        InteractionKind `gorm:"primaryKey;type:varchar(16);index:idx_content,priority:3" json:"kind"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}

func (i *Interaction) Ref() ContentRef {
	return ContentRef{Type: i.ContentType, ID: i.ContentID}
}
