package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// TestStore 限时测试会话所需的存取口径
type TestStore interface {
	FindByID(id uint) (*model.Test, error)
	CreateSession(s *model.TestSession) error
	UpdateSession(s *model.TestSession) error
	FindSessionByTestAndStudent(testID, studentID uint) (*model.TestSession, error)
	ListExpiredSessions(now time.Time) ([]model.TestSession, error)
}

// Grader 整卷判分口径，由 GradingService 实现
type Grader interface {
	Grade(studentID uint, req SubmissionRequest) (*model.Result, error)
}

type TestSessionService struct {
	Tests  TestStore
	Grader Grader
	nowFn  func() time.Time
}

func NewTestSessionService(tests TestStore, grader Grader) *TestSessionService {
	return &TestSessionService{
		Tests:  tests,
		Grader: grader,
		nowFn:  time.Now,
	}
}

// StartTest 开始答题。已有会话时直接返回（刷新页面不重置计时）。
func (s *TestSessionService) StartTest(studentID, testID uint) (*model.TestSession, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		return nil, util.ErrContentNotFound
	}
	if !test.IsPublished {
		return nil, util.ErrTestNotPublished
	}

	existing, _ := s.Tests.FindSessionByTestAndStudent(testID, studentID)
	if existing != nil {
		return existing, nil
	}

	session := &model.TestSession{
		TestID:    testID,
		StudentID: studentID,
		StartedAt: s.nowFn(),
		Status:    model.SessionInProgress,
	}
	if err := s.Tests.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SaveProgress 保存作答草稿，到时自动交卷时按草稿判分
func (s *TestSessionService) SaveProgress(studentID, testID uint, answers map[string]string) error {
	session, err := s.Tests.FindSessionByTestAndStudent(testID, studentID)
	if err != nil || session == nil {
		return util.ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		return util.ErrTestAlreadySubmitted
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	session.Answers = raw
	return s.Tests.UpdateSession(session)
}

// RemainingSeconds 剩余秒数 = 限时(秒) - 已过去时间，向下钳到 0。
// 不限时（TimeLimit 为 0）恒为 0。
func (s *TestSessionService) RemainingSeconds(test *model.Test, session *model.TestSession) int {
	if test.TimeLimit <= 0 {
		return 0
	}
	total := test.TimeLimit * 60
	if session == nil || session.Status != model.SessionInProgress {
		return 0
	}
	elapsed := int(s.nowFn().Sub(session.StartedAt).Seconds())
	remaining := total - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// SessionStatus 会话状态查询结果
type SessionStatus struct {
	TestID        uint   `json:"testId"`
	TimeLimit     int    `json:"timeLimit"`
	Status        string `json:"status"`
	RemainingTime int    `json:"remainingTime"`
}

func (s *TestSessionService) GetStatus(studentID, testID uint) (*SessionStatus, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		return nil, util.ErrContentNotFound
	}

	status := &SessionStatus{
		TestID:        testID,
		TimeLimit:     test.TimeLimit,
		RemainingTime: test.TimeLimit * 60,
	}

	session, _ := s.Tests.FindSessionByTestAndStudent(testID, studentID)
	if session == nil {
		status.Status = "not_started"
		return status, nil
	}
	status.Status = session.Status
	status.RemainingTime = s.RemainingSeconds(test, session)
	return status, nil
}

// SubmitTest 手动交卷：按当前答案判分并关闭会话，
// timeSpent = 限时(秒) - 剩余秒数。
func (s *TestSessionService) SubmitTest(studentID, testID uint, answers map[string]string) (*model.Result, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		return nil, util.ErrContentNotFound
	}

	session, err := s.Tests.FindSessionByTestAndStudent(testID, studentID)
	if err != nil || session == nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrTestAlreadySubmitted
	}

	var timeSpent *int
	if test.TimeLimit > 0 {
		spent := test.TimeLimit*60 - s.RemainingSeconds(test, session)
		timeSpent = &spent
	}

	result, err := s.Grader.Grade(studentID, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   testID,
		CourseID:    test.CourseID,
		Answers:     answers,
		TimeSpent:   timeSpent,
	})
	if err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(answers)
	session.Answers = raw
	session.Status = model.SessionSubmitted
	if err := s.Tests.UpdateSession(session); err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireOverdueSessions 后台巡检：对已超时的进行中会话按草稿答案
// 自动交卷。到时自动交卷是正常终态而不是错误路径，timeSpent 记满额限时。
// 返回本轮自动交卷的数量。
func (s *TestSessionService) ExpireOverdueSessions() int {
	now := s.nowFn()
	sessions, err := s.Tests.ListExpiredSessions(now)
	if err != nil {
		logger.Log.Error("failed to list expired test sessions", zap.Error(err))
		return 0
	}

	expired := 0
	for i := range sessions {
		session := &sessions[i]

		test, err := s.Tests.FindByID(session.TestID)
		if err != nil {
			logger.Log.Error("expired session references missing test",
				zap.Uint("testId", session.TestID), zap.Error(err))
			continue
		}

		spent := test.TimeLimit * 60
		_, err = s.Grader.Grade(session.StudentID, SubmissionRequest{
			ContentType: model.ContentTest,
			ContentID:   session.TestID,
			CourseID:    test.CourseID,
			Answers:     session.DecodeAnswers(),
			TimeSpent:   &spent,
		})
		if err != nil {
			logger.Log.Error("auto-submit grading failed",
				zap.Uint("testId", session.TestID),
				zap.Uint("studentId", session.StudentID),
				zap.Error(err))
			continue
		}

		session.Status = model.SessionAutoSubmitted
		if err := s.Tests.UpdateSession(session); err != nil {
			logger.Log.Error("failed to close auto-submitted session", zap.Error(err))
			continue
		}

		logger.Log.Info("test auto-submitted on timeout",
			zap.Uint("testId", session.TestID),
			zap.Uint("studentId", session.StudentID))
		expired++
	}
	return expired
}

// AssignmentWindowStatus 作业时间窗状态，只看墙钟不计时。
// 逾期只是提示，引擎仍接受并判分逾期提交。
func (s *TestSessionService) AssignmentWindowStatus(a *model.Assignment) model.WindowStatus {
	return WindowStatusAt(a, s.nowFn())
}

// WindowStatusAt 纯函数版本的时间窗判定
func WindowStatusAt(a *model.Assignment, now time.Time) model.WindowStatus {
	if a.StartTime != nil && now.Before(*a.StartTime) {
		return model.WindowUpcoming
	}
	if a.EndTime != nil && now.After(*a.EndTime) {
		return model.WindowOverdue
	}
	return model.WindowActive
}
