package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sysBoxCollection = "sys_box"

// 通知类型
const (
	NotifyInterviewScheduled int8 = 1
	NotifyAccepted           int8 = 2
	NotifyRejected           int8 = 3
)

// SysBoxModel 系统通知模型
type SysBoxModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiver_id"` // 消息接收者ID
	SenderID   uint64             `bson:"sender_id" json:"sender_id"`     // 动作发起者ID (系统通知可为0)
	Type       int8               `bson:"type" json:"type"`               // 1-面试安排, 2-录用, 3-拒绝
	TargetID   uint64             `bson:"target_id" json:"target_id"`     // 申请ID
	Content    string             `bson:"content" json:"content"`
	Payload    map[string]any     `bson:"payload" json:"payload"`
	IsRead     bool               `bson:"is_read" json:"is_read"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
