package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) Create(res *model.CourseResource) error {
	return r.DB.Create(res).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.CourseResource, error) {
	var res model.CourseResource
	err := r.DB.First(&res, id).Error
	return &res, err
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.CourseResource{}, id).Error
}

func (r *ResourceRepository) ListByCourse(courseID uint) ([]model.CourseResource, error) {
	var rs []model.CourseResource
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&rs).Error
	return rs, err
}
