package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"encoding/json"
	"strconv"
	"time"
)

// ContentService 测试/作业/题目的管理端维护逻辑
type ContentService struct {
	Tests       *repository.TestRepository
	Assignments *repository.AssignmentRepository
	Questions   *repository.QuestionRepository
}

func NewContentService(tests *repository.TestRepository, assignments *repository.AssignmentRepository, questions *repository.QuestionRepository) *ContentService {
	return &ContentService{Tests: tests, Assignments: assignments, Questions: questions}
}

type TestRequest struct {
	CourseID    uint   `json:"courseId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TimeLimit   int    `json:"timeLimit"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *ContentService) CreateTest(req TestRequest) (*model.Test, error) {
	test := &model.Test{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
	}
	if req.IsPublished != nil && *req.IsPublished {
		now := time.Now()
		test.IsPublished = true
		test.PublishedAt = &now
	}
	if err := s.Tests.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *ContentService) UpdateTest(id uint, req TestRequest) (*model.Test, error) {
	test, err := s.Tests.FindByID(id)
	if err != nil {
		return nil, err
	}
	test.Title = req.Title
	test.Description = req.Description
	test.TimeLimit = req.TimeLimit
	if req.IsPublished != nil {
		if *req.IsPublished && !test.IsPublished {
			now := time.Now()
			test.PublishedAt = &now
		}
		test.IsPublished = *req.IsPublished
	}
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *ContentService) DeleteTest(id uint) error {
	return s.Tests.Delete(id)
}

func (s *ContentService) GetTest(id uint) (*model.Test, error) {
	return s.Tests.FindByID(id)
}

func (s *ContentService) ListTestsByCourse(courseID uint) ([]model.Test, error) {
	return s.Tests.ListByCourse(courseID)
}

type AssignmentRequest struct {
	CourseID    uint       `json:"courseId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	IsPublished *bool      `json:"isPublished"`
}

func (s *ContentService) CreateAssignment(req AssignmentRequest) (*model.Assignment, error) {
	a := &model.Assignment{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	if err := s.Assignments.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ContentService) UpdateAssignment(id uint, req AssignmentRequest) (*model.Assignment, error) {
	a, err := s.Assignments.FindByID(id)
	if err != nil {
		return nil, err
	}
	a.Title = req.Title
	a.Description = req.Description
	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	if err := s.Assignments.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ContentService) DeleteAssignment(id uint) error {
	return s.Assignments.Delete(id)
}

func (s *ContentService) GetAssignment(id uint) (*model.Assignment, error) {
	return s.Assignments.FindByID(id)
}

func (s *ContentService) ListAssignmentsByCourse(courseID uint) ([]model.Assignment, error) {
	return s.Assignments.ListByCourse(courseID)
}

type QuestionRequest struct {
	ContentType   model.ContentType  `json:"contentType" binding:"required"`
	ContentID     uint               `json:"contentId" binding:"required"`
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Text          string             `json:"text" binding:"required"`
	Options       json.RawMessage    `json:"options"`
	CorrectAnswer string             `json:"correctAnswer" binding:"required"`
	Points        int                `json:"points"`
	CodeTemplate  string             `json:"codeTemplate"`
	TestCases     json.RawMessage    `json:"testCases"`
	LanguageID    int                `json:"languageId"`
	Order         int                `json:"order"`
}

// validateQuestion 题目形参校验：选择题的正确答案下标必须落在选项内
func validateQuestion(req QuestionRequest) error {
	if req.QuestionType != model.MultipleChoice {
		return nil
	}
	q := model.Question{Options: req.Options}
	options := q.DecodeOptions()
	if len(options) == 0 {
		return util.ErrInvalidQuestion
	}
	idx, err := strconv.Atoi(req.CorrectAnswer)
	if err != nil || idx < 0 || idx >= len(options) {
		return util.ErrInvalidQuestion
	}
	return nil
}

func (s *ContentService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	points := req.Points
	if points <= 0 {
		points = 1
	}

	q := &model.Question{
		ContentType:   req.ContentType,
		ContentID:     req.ContentID,
		QuestionType:  req.QuestionType,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        points,
		CodeTemplate:  req.CodeTemplate,
		TestCases:     req.TestCases,
		LanguageID:    req.LanguageID,
		Order:         req.Order,
	}
	if err := s.Questions.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	q, err := s.Questions.FindByID(id)
	if err != nil {
		return nil, err
	}
	q.ContentType = req.ContentType
	q.ContentID = req.ContentID
	q.QuestionType = req.QuestionType
	q.Text = req.Text
	q.Options = req.Options
	q.CorrectAnswer = req.CorrectAnswer
	if req.Points > 0 {
		q.Points = req.Points
	}
	q.CodeTemplate = req.CodeTemplate
	q.TestCases = req.TestCases
	q.LanguageID = req.LanguageID
	q.Order = req.Order
	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) DeleteQuestion(id uint) error {
	return s.Questions.Delete(id)
}

func (s *ContentService) GetQuestion(id uint) (*model.Question, error) {
	return s.Questions.FindByID(id)
}

func (s *ContentService) ListQuestions(contentType model.ContentType, contentID uint) ([]model.Question, error) {
	return s.Questions.ListByContent(contentType, contentID)
}

// StudentQuestion 学生端题目视图，不含答案
type StudentQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Text         string             `json:"text"`
	Options      json.RawMessage    `json:"options,omitempty"`
	Points       int                `json:"points"`
	CodeTemplate string             `json:"codeTemplate,omitempty"`
	LanguageID   int                `json:"languageId,omitempty"`
	Order        int                `json:"order"`
}

func (s *ContentService) ListStudentQuestions(contentType model.ContentType, contentID uint) ([]StudentQuestion, error) {
	qs, err := s.Questions.ListByContent(contentType, contentID)
	if err != nil {
		return nil, err
	}

	res := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		res[i] = StudentQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			Options:      q.Options,
			Points:       q.EffectivePoints(),
			CodeTemplate: q.CodeTemplate,
			LanguageID:   q.LanguageID,
			Order:        q.Order,
		}
	}
	return res, nil
}
