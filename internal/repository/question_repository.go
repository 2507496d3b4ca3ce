package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

// ListByContent 按题目顺序返回某个测试/作业下的全部题目
func (r *QuestionRepository) ListByContent(contentType model.ContentType, contentID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}
