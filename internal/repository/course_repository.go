package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.Preload("Teacher").First(&c, id).Error
	return &c, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) List(page, limit int) ([]model.Course, int64, error) {
	var cs []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CourseRepository) ListByTeacher(teacherID uint) ([]model.Course, error) {
	var cs []model.Course
	err := r.DB.Where("teacher_id = ?", teacherID).Order("created_at desc").Find(&cs).Error
	return cs, err
}

// Enrollment related methods

func (r *CourseRepository) Enroll(courseID, studentID uint) error {
	var existing model.Enrollment
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&existing).Error
	if err == nil {
		return nil // 已选课，幂等
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.DB.Create(&model.Enrollment{CourseID: courseID, StudentID: studentID}).Error
}

func (r *CourseRepository) IsStudentEnrolled(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) ListEnrolledCourses(studentID uint) ([]model.Course, error) {
	var cs []model.Course
	err := r.DB.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.student_id = ?", studentID).
		Order("courses.created_at desc").
		Find(&cs).Error
	return cs, err
}
