package model

import (
	"encoding/json"
	"time"
)

// QuestionResult 单题判分结果，序列化后存入 Result.Answers
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	Feedback      string `json:"feedback"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Result 一次提交的判分结果。TestID/AssignmentID 恰好设置一个，与 Type 一致；
// 同一 (StudentID, 内容) 至多一条记录，重交走覆盖更新。
// swagger:model Result
type Result struct {
	BaseModel
	StudentID    uint            `gorm:"index;type:bigint unsigned" json:"studentId"`
	Student      *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CourseID     uint            `gorm:"index;type:bigint unsigned" json:"courseId"`
	TestID       *uint           `gorm:"index;type:bigint unsigned" json:"testId,omitempty"`
	AssignmentID *uint           `gorm:"index;type:bigint unsigned" json:"assignmentId,omitempty"`
	Type         ContentType     `gorm:"size:20;not null" json:"type"`
	Answers      json.RawMessage `gorm:"type:json" json:"answers"`
	Score        int             `gorm:"not null" json:"score"` // 百分比 0-100
	MaxScore     int             `gorm:"not null" json:"maxScore"`
	SubmittedAt  time.Time       `json:"submittedAt"`
	TimeSpent    *int            `json:"timeSpent,omitempty"` // Seconds
}

func (Result) TableName() string {
	return "results"
}

// ContentRef 返回结果指向的内容 ID
func (r *Result) ContentRef() uint {
	if r.Type == ContentTest && r.TestID != nil {
		return *r.TestID
	}
	if r.Type == ContentAssignment && r.AssignmentID != nil {
		return *r.AssignmentID
	}
	return 0
}

// DecodeAnswers 解析逐题结果
func (r *Result) DecodeAnswers() []QuestionResult {
	var qrs []QuestionResult
	if len(r.Answers) == 0 {
		return qrs
	}
	_ = json.Unmarshal(r.Answers, &qrs)
	return qrs
}

// CodeAnswer 代码题原始答案的 JSON 信封，由前端在作答阶段执行代码后写入
type CodeAnswer struct {
	Code   string `json:"code"`
	Output string `json:"output"`
}
