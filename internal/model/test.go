package model

import "time"

// swagger:model Test
type Test struct {
	BaseModel
	CourseID    uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	TimeLimit   int        `gorm:"default:0" json:"timeLimit"` // Minutes, 0 表示不限时
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model Assignment
type Assignment struct {
	BaseModel
	CourseID    uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// WindowStatus 作业时间窗状态
type WindowStatus string

const (
	WindowUpcoming WindowStatus = "upcoming"
	WindowActive   WindowStatus = "active"
	WindowOverdue  WindowStatus = "overdue"
)
