package model

// CourseResource 课程资料文件（课件、示例代码等）
// swagger:model CourseResource
type CourseResource struct {
	BaseModel
	CourseID    uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	UploaderID  uint   `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	FileName    string `gorm:"size:255" json:"fileName"`
	FileURL     string `gorm:"size:512" json:"fileUrl"`
	FileSize    int64  `gorm:"default:0" json:"fileSize"`
	ContentType string `gorm:"size:100" json:"contentType"`
}

func (CourseResource) TableName() string {
	return "course_resources"
}
