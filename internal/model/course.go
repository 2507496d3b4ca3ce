package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	TeacherID   uint   `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Teacher     *User  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment 学生选课记录
type Enrollment struct {
	BaseModel
	CourseID  uint  `gorm:"index:idx_enroll_course_student,unique;type:bigint unsigned" json:"courseId"`
	StudentID uint  `gorm:"index:idx_enroll_course_student,unique;type:bigint unsigned" json:"studentId"`
	Student   *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
