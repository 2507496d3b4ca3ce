package model

import (
	"encoding/json"
	"time"
)

// 限时测试会话状态机：in_progress -> submitted | auto_submitted
const (
	SessionInProgress    = "in_progress"
	SessionSubmitted     = "submitted"
	SessionAutoSubmitted = "auto_submitted"
)

// TestSession 一名学生对一份限时测试的进行中状态，
// Answers 保存作答草稿，到时自动交卷时按草稿判分。
type TestSession struct {
	BaseModel
	TestID    uint            `gorm:"index:idx_session_test_student,unique;type:bigint unsigned" json:"testId"`
	StudentID uint            `gorm:"index:idx_session_test_student,unique;type:bigint unsigned" json:"studentId"`
	StartedAt time.Time       `json:"startedAt"`
	Status    string          `gorm:"size:20;default:'in_progress'" json:"status"`
	Answers   json.RawMessage `gorm:"type:json" json:"answers,omitempty"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

// DecodeAnswers 解析草稿答案（questionKey -> 原始答案）
func (s *TestSession) DecodeAnswers() map[string]string {
	answers := make(map[string]string)
	if len(s.Answers) == 0 {
		return answers
	}
	_ = json.Unmarshal(s.Answers, &answers)
	return answers
}
