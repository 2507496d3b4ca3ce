package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// QuestionStore 判分所需的题库读取口径
type QuestionStore interface {
	ListByContent(contentType model.ContentType, contentID uint) ([]model.Question, error)
}

// ResultStore 结果写入口径，Upsert 以 (student, content) 为键
type ResultStore interface {
	Upsert(result *model.Result) error
	FindByStudentAndContent(studentID uint, contentType model.ContentType, contentID uint) (*model.Result, error)
}

// EnrollmentChecker 选课校验口径
type EnrollmentChecker interface {
	IsStudentEnrolled(studentID, courseID uint) (bool, error)
}

type GradingService struct {
	Questions QuestionStore
	Results   ResultStore
	Courses   EnrollmentChecker
	nowFn     func() time.Time
}

func NewGradingService(questions QuestionStore, results ResultStore, courses EnrollmentChecker) *GradingService {
	return &GradingService{
		Questions: questions,
		Results:   results,
		Courses:   courses,
		nowFn:     time.Now,
	}
}

// SubmissionRequest 一次整卷提交
type SubmissionRequest struct {
	ContentType model.ContentType `json:"contentType" binding:"required"`
	ContentID   uint              `json:"contentId" binding:"required"`
	CourseID    uint              `json:"courseId"`
	Answers     map[string]string `json:"answers"`
	TimeSpent   *int              `json:"timeSpent,omitempty"`
}

// Grade 对提交整卷判分并落库。逐题判分互相独立，单题异常不会
// 影响其余题目；重复判同一 (student, content) 覆盖旧结果而非新增。
// 代码题在作答阶段已经执行过，这里只比对其预先产出的输出，不再调判题服务。
func (s *GradingService) Grade(studentID uint, req SubmissionRequest) (*model.Result, error) {
	if req.CourseID > 0 && s.Courses != nil {
		enrolled, err := s.Courses.IsStudentEnrolled(studentID, req.CourseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, util.ErrNotEnrolled
		}
	}

	questions, err := s.Questions.ListByContent(req.ContentType, req.ContentID)
	if err != nil {
		return nil, err
	}

	// 键空间一次性判定：全部答案键都命中题目 ID 才整卷按 ID 取答案，
	// 否则整卷按位置下标取（前端可能按题目顺序提交）。逐题双键兜底
	// 会在自增 ID 与下标重叠时串题，这里整卷只认一种键空间。
	idKeys := make(map[string]bool, len(questions))
	for i := range questions {
		if q := &questions[i]; q.ID != 0 {
			idKeys[strconv.FormatUint(uint64(q.ID), 10)] = true
		}
	}
	byID := true
	for key := range req.Answers {
		if !idKeys[key] {
			byID = false
			break
		}
	}

	earned := 0
	maxScore := 0
	questionResults := make([]model.QuestionResult, 0, len(questions))

	for i := range questions {
		q := &questions[i]
		key := QuestionKey(q, i)

		lookup := key
		if !byID {
			lookup = strconv.Itoa(i)
		}
		raw, ok := req.Answers[lookup]

		qr := ValidateAnswer(q, raw, ok)
		qr.QuestionID = key

		earned += qr.Points
		maxScore += q.EffectivePoints()
		questionResults = append(questionResults, qr)
	}

	score := 0
	if maxScore > 0 {
		score = int(math.Round(float64(earned) * 100 / float64(maxScore)))
	}

	answersJSON, err := json.Marshal(questionResults)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		StudentID:   studentID,
		CourseID:    req.CourseID,
		Type:        req.ContentType,
		Answers:     answersJSON,
		Score:       score,
		MaxScore:    maxScore,
		SubmittedAt: s.nowFn(),
		TimeSpent:   req.TimeSpent,
	}
	if req.ContentType == model.ContentTest {
		contentID := req.ContentID
		result.TestID = &contentID
	} else {
		contentID := req.ContentID
		result.AssignmentID = &contentID
	}

	if err := s.Results.Upsert(result); err != nil {
		return nil, err
	}

	logger.Log.Info("submission graded",
		zap.Uint("studentId", studentID),
		zap.String("contentType", string(req.ContentType)),
		zap.Uint("contentId", req.ContentID),
		zap.Int("score", score),
		zap.Int("maxScore", maxScore))

	return result, nil
}

// GetResult 查询某学生对某内容的既有结果
func (s *GradingService) GetResult(studentID uint, contentType model.ContentType, contentID uint) (*model.Result, error) {
	return s.Results.FindByStudentAndContent(studentID, contentType, contentID)
}
