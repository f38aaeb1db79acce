package model

import (
	"database/sql/driver"
	"fmt"
)

// ApplicationStatus 申请状态，只允许下列枚举值
type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusShortlisted        ApplicationStatus = "shortlisted"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// AllApplicationStatuses 按流程顺序排列，统计时也按此顺序输出
var AllApplicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// ParseApplicationStatus 解析外部传入的状态字符串
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusShortlisted,
		StatusInterviewScheduled, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal 终态不允许再流转
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// IsReviewed 进入该状态意味着评审已给出结论（需要写 reviewed_at）
func (s ApplicationStatus) IsReviewed() bool {
	switch s {
	case StatusShortlisted, StatusInterviewScheduled, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// Successors 返回当前状态允许流转到的下一状态
func (s ApplicationStatus) Successors() []ApplicationStatus {
	switch s {
	case StatusDraft:
		return []ApplicationStatus{StatusSubmitted}
	case StatusSubmitted:
		return []ApplicationStatus{StatusUnderReview, StatusShortlisted, StatusWithdrawn}
	case StatusUnderReview:
		return []ApplicationStatus{StatusShortlisted, StatusRejected, StatusWithdrawn}
	case StatusShortlisted:
		return []ApplicationStatus{StatusInterviewScheduled, StatusRejected, StatusWithdrawn}
	case StatusInterviewScheduled:
		return []ApplicationStatus{StatusAccepted, StatusRejected, StatusWithdrawn}
	default:
		return nil
	}
}

// CanTransitionTo 判断 s -> target 是否为合法边
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, next := range s.Successors() {
		if next == target {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// Value 写库前校验，非法状态不落库
func (s ApplicationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid application status %q", string(s))
	}
	return string(s), nil
}

// Scan 读库时校验，脏数据直接报错
func (s *ApplicationStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ApplicationStatus", value)
	}
	st, err := ParseApplicationStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
