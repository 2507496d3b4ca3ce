package repository

import (
	"elearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) FindByStudentAndContent(studentID uint, contentType model.ContentType, contentID uint) (*model.Result, error) {
	var res model.Result
	query := r.DB.Where("student_id = ? AND type = ?", studentID, contentType)
	if contentType == model.ContentTest {
		query = query.Where("test_id = ?", contentID)
	} else {
		query = query.Where("assignment_id = ?", contentID)
	}
	err := query.First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Upsert 以 (student, content) 为键覆盖写入，重交更新而不是新增。
// 冲突策略为最后写入者胜出。
func (r *ResultRepository) Upsert(result *model.Result) error {
	existing, err := r.FindByStudentAndContent(result.StudentID, result.Type, result.ContentRef())
	if err == nil && existing != nil {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		return r.DB.Save(result).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.DB.Create(result).Error
}

func (r *ResultRepository) FindByID(id uint) (*model.Result, error) {
	var res model.Result
	err := r.DB.Preload("Student").First(&res, id).Error
	return &res, err
}

func (r *ResultRepository) ListByStudent(studentID uint) ([]model.Result, error) {
	var rs []model.Result
	err := r.DB.Where("student_id = ?", studentID).Order("submitted_at desc").Find(&rs).Error
	return rs, err
}

// ListForLeaderboard 取某内容类型（可选具体内容）在 since 之后提交的结果，带学生信息
func (r *ResultRepository) ListForLeaderboard(contentType model.ContentType, contentID uint, since time.Time) ([]model.Result, error) {
	var rs []model.Result
	query := r.DB.Preload("Student").Where("type = ?", contentType)
	if contentID > 0 {
		if contentType == model.ContentTest {
			query = query.Where("test_id = ?", contentID)
		} else {
			query = query.Where("assignment_id = ?", contentID)
		}
	}
	if !since.IsZero() {
		query = query.Where("submitted_at >= ?", since)
	}
	err := query.Order("submitted_at desc").Find(&rs).Error
	return rs, err
}
