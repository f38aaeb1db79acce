package model

import (
	"time"
)

// Opportunity 机会（职位/奖学金/资助），由目录服务维护，这里只读
type Opportunity struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	OwnerID          uint64     `gorm:"not null;index:idx_owner_id" json:"owner_id"`
	Title            string     `gorm:"type:varchar(255);not null" json:"title"`
	OpportunityType  string     `gorm:"type:varchar(32);not null" json:"opportunity_type"`
	OrganizationName string     `gorm:"type:varchar(255)" json:"organization_name"`
	Deadline         *time.Time `json:"deadline"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// DeadlinePassed 截止时间为空表示长期有效
func (o *Opportunity) DeadlinePassed(now time.Time) bool {
	return o.Deadline != nil && now.After(*o.Deadline)
}
