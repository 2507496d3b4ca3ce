package repository

import (
	"elearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.First(&t, id).Error
	return &t, err
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Test{}, id).Error
}

func (r *TestRepository) ListByCourse(courseID uint) ([]model.Test, error) {
	var ts []model.Test
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&ts).Error
	return ts, err
}

// TestSession related methods

func (r *TestRepository) CreateSession(s *model.TestSession) error {
	return r.DB.Create(s).Error
}

func (r *TestRepository) UpdateSession(s *model.TestSession) error {
	return r.DB.Save(s).Error
}

func (r *TestRepository) FindSessionByTestAndStudent(testID, studentID uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.Where("test_id = ? AND student_id = ?", testID, studentID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListExpiredSessions 查出已超时但仍在进行中的会话，deadline 按各自测试的限时计算
func (r *TestRepository) ListExpiredSessions(now time.Time) ([]model.TestSession, error) {
	var sessions []model.TestSession
	err := r.DB.
		Joins("JOIN tests ON tests.id = test_sessions.test_id").
		Where("test_sessions.status = ?", model.SessionInProgress).
		Where("tests.time_limit > 0").
		Where("TIMESTAMPADD(MINUTE, tests.time_limit, test_sessions.started_at) <= ?", now).
		Find(&sessions).Error
	return sessions, err
}
