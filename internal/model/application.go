package model

import (
	"time"
)

// Application 一次申请：一个申请人对应一个机会
type Application struct {
	ID            uint64            `gorm:"primaryKey" json:"id"`
	OpportunityID uint64            `gorm:"not null;uniqueIndex:idx_applicant_opportunity,priority:2" json:"opportunity_id"`
	ApplicantID   uint64            `gorm:"not null;uniqueIndex:idx_applicant_opportunity,priority:1" json:"applicant_id"`
	Status        ApplicationStatus `gorm:"type:varchar(32);not null;index:idx_status" json:"status"`

	// 个人信息
	FullName string `gorm:"type:varchar(128);not null" json:"full_name"`
	Email    string `gorm:"type:varchar(255);not null" json:"email"`
	Phone    string `gorm:"type:varchar(32)" json:"phone"`
	Location string `gorm:"type:varchar(255)" json:"location"`

	// 材料
	CVURL        string `gorm:"type:varchar(512)" json:"cv_url"`
	CoverLetter  string `gorm:"type:text" json:"cover_letter"`
	PortfolioURL string `gorm:"type:varchar(512)" json:"portfolio_url"`
	LinkedInURL  string `gorm:"type:varchar(512)" json:"linkedin_url"`

	// 履历
	ExperienceYears int    `gorm:"not null;default:0" json:"experience_years"`
	CurrentPosition string `gorm:"type:varchar(255)" json:"current_position"`
	CurrentCompany  string `gorm:"type:varchar(255)" json:"current_company"`
	ExpectedSalary  string `gorm:"type:varchar(64)" json:"expected_salary"`
	Availability    string `gorm:"type:varchar(128)" json:"availability"`
	References      string `gorm:"type:text" json:"references"`

	// 评审
	ReviewerNotes     string     `gorm:"type:text" json:"reviewer_notes"`
	InterviewDate     *time.Time `json:"interview_date"`
	InterviewLocation string     `gorm:"type:varchar(255)" json:"interview_location"`

	// AI 匹配
	AIMatchScore   *float64 `json:"ai_match_score"`
	AIMatchReasons string   `gorm:"type:text" json:"ai_match_reasons"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
}

func (Application) TableName() string {
	return "applications"
}

// Clone 深拷贝，指针字段单独复制，保证状态机不修改原对象
func (a *Application) Clone() *Application {
	c := *a
	c.InterviewDate = cloneTime(a.InterviewDate)
	c.SubmittedAt = cloneTime(a.SubmittedAt)
	c.ReviewedAt = cloneTime(a.ReviewedAt)
	if a.AIMatchScore != nil {
		score := *a.AIMatchScore
		c.AIMatchScore = &score
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
