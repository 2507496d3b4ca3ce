package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Create(a).Error
}

func (r *AssignmentRepository) FindByID(id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssignmentRepository) Update(a *model.Assignment) error {
	return r.DB.Save(a).Error
}

func (r *AssignmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assignment{}, id).Error
}

func (r *AssignmentRepository) ListByCourse(courseID uint) ([]model.Assignment, error) {
	var as []model.Assignment
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&as).Error
	return as, err
}
