package dto

import "time"

// CreateApplicationDTO 创建申请，submit 为 true 时直接提交
type CreateApplicationDTO struct {
	OpportunityID   uint64 `json:"opportunity_id" binding:"required"`
	Submit          bool   `json:"submit"`
	FullName        string `json:"full_name" binding:"required,max=128"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"omitempty,max=32"`
	Location        string `json:"location" binding:"omitempty,max=255"`
	CVURL           string `json:"cv_url" binding:"omitempty,url"`
	CoverLetter     string `json:"cover_letter" binding:"omitempty,max=10000"`
	PortfolioURL    string `json:"portfolio_url" binding:"omitempty,url"`
	LinkedInURL     string `json:"linkedin_url" binding:"omitempty,url"`
	ExperienceYears int    `json:"experience_years" binding:"omitempty,min=0,max=80"`
	CurrentPosition string `json:"current_position" binding:"omitempty,max=255"`
	CurrentCompany  string `json:"current_company" binding:"omitempty,max=255"`
	ExpectedSalary  string `json:"expected_salary" binding:"omitempty,max=64"`
	Availability    string `json:"availability" binding:"omitempty,max=128"`
	References      string `json:"references" binding:"omitempty,max=5000"`
}

// TransitionMetadataDTO 状态流转附带的评审信息
type TransitionMetadataDTO struct {
	ReviewerNotes     *string    `json:"reviewer_notes"`
	InterviewDate     *time.Time `json:"interview_date"`
	InterviewLocation *string    `json:"interview_location" binding:"omitempty,max=255"`
	AIMatchScore      *float64   `json:"ai_match_score" binding:"omitempty,gte=0,lte=1"`
	AIMatchReasons    *string    `json:"ai_match_reasons"`
}

// TransitionStatusDTO 修改申请状态
type TransitionStatusDTO struct {
	TargetStatus   string                `json:"target_status" binding:"required"`
	ExpectedStatus string                `json:"expected_status"`
	Metadata       TransitionMetadataDTO `json:"metadata"`
}

// ApplicationDTO 申请详情
type ApplicationDTO struct {
	ID                uint64     `json:"id"`
	OpportunityID     uint64     `json:"opportunity_id"`
	ApplicantID       uint64     `json:"applicant_id"`
	Status            string     `json:"status"`
	FullName          string     `json:"full_name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Location          string     `json:"location"`
	CVURL             string     `json:"cv_url"`
	CoverLetter       string     `json:"cover_letter"`
	PortfolioURL      string     `json:"portfolio_url"`
	LinkedInURL       string     `json:"linkedin_url"`
	ExperienceYears   int        `json:"experience_years"`
	CurrentPosition   string     `json:"current_position"`
	CurrentCompany    string     `json:"current_company"`
	ExpectedSalary    string     `json:"expected_salary"`
	Availability      string     `json:"availability"`
	References        string     `json:"references"`
	ReviewerNotes     string     `json:"reviewer_notes"`
	InterviewDate     *time.Time `json:"interview_date"`
	InterviewLocation string     `json:"interview_location"`
	AIMatchScore      *float64   `json:"ai_match_score"`
	AIMatchReasons    string     `json:"ai_match_reasons"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	SubmittedAt       *time.Time `json:"submitted_at"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
}
