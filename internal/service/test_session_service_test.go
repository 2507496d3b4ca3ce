package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"
	"testing"
	"time"
)

type fakeTestStore struct {
	tests    map[uint]*model.Test
	sessions map[uint]map[uint]*model.TestSession // testID -> studentID -> session
	nextID   uint
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{
		tests:    make(map[uint]*model.Test),
		sessions: make(map[uint]map[uint]*model.TestSession),
		nextID:   1,
	}
}

func (f *fakeTestStore) addTest(id uint, timeLimit int, published bool) *model.Test {
	test := &model.Test{TimeLimit: timeLimit, IsPublished: published}
	test.ID = id
	f.tests[id] = test
	return test
}

func (f *fakeTestStore) FindByID(id uint) (*model.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func (f *fakeTestStore) CreateSession(s *model.TestSession) error {
	s.ID = f.nextID
	f.nextID++
	if f.sessions[s.TestID] == nil {
		f.sessions[s.TestID] = make(map[uint]*model.TestSession)
	}
	f.sessions[s.TestID][s.StudentID] = s
	return nil
}

func (f *fakeTestStore) UpdateSession(s *model.TestSession) error {
	f.sessions[s.TestID][s.StudentID] = s
	return nil
}

func (f *fakeTestStore) FindSessionByTestAndStudent(testID, studentID uint) (*model.TestSession, error) {
	s, ok := f.sessions[testID][studentID]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (f *fakeTestStore) ListExpiredSessions(now time.Time) ([]model.TestSession, error) {
	var out []model.TestSession
	for testID, byStudent := range f.sessions {
		test := f.tests[testID]
		if test == nil || test.TimeLimit <= 0 {
			continue
		}
		deadline := time.Duration(test.TimeLimit) * time.Minute
		for _, s := range byStudent {
			if s.Status == model.SessionInProgress && !now.Before(s.StartedAt.Add(deadline)) {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

type fakeGrader struct {
	calls []SubmissionRequest
}

func (f *fakeGrader) Grade(studentID uint, req SubmissionRequest) (*model.Result, error) {
	f.calls = append(f.calls, req)
	return &model.Result{StudentID: studentID, Score: 50}, nil
}

func sessionServiceAt(store *fakeTestStore, grader *fakeGrader, now time.Time) *TestSessionService {
	svc := NewTestSessionService(store, grader)
	svc.nowFn = func() time.Time { return now }
	return svc
}

func TestStartTestCreatesSessionOnce(t *testing.T) {
	store := newFakeTestStore()
	store.addTest(1, 30, true)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := sessionServiceAt(store, &fakeGrader{}, now)

	first, err := svc.StartTest(7, 1)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !first.StartedAt.Equal(now) {
		t.Errorf("expected server-side start time %v, got %v", now, first.StartedAt)
	}

	// 重复开始返回已有会话，计时不重置
	svc.nowFn = func() time.Time { return now.Add(5 * time.Minute) }
	second, err := svc.StartTest(7, 1)
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if second.ID != first.ID || !second.StartedAt.Equal(first.StartedAt) {
		t.Error("restarting must return the existing session unchanged")
	}
}

func TestStartTestUnpublished(t *testing.T) {
	store := newFakeTestStore()
	store.addTest(1, 30, false)
	svc := sessionServiceAt(store, &fakeGrader{}, time.Now())

	if _, err := svc.StartTest(7, 1); !errors.Is(err, util.ErrTestNotPublished) {
		t.Errorf("expected ErrTestNotPublished, got %v", err)
	}
}

func TestRemainingSeconds(t *testing.T) {
	store := newFakeTestStore()
	test := store.addTest(1, 30, true)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := sessionServiceAt(store, &fakeGrader{}, start.Add(10*time.Minute))

	session := &model.TestSession{TestID: 1, StudentID: 7, StartedAt: start, Status: model.SessionInProgress}
	if got := svc.RemainingSeconds(test, session); got != 20*60 {
		t.Errorf("expected 1200 remaining seconds, got %d", got)
	}

	// 超时后钳到 0
	svc.nowFn = func() time.Time { return start.Add(45 * time.Minute) }
	if got := svc.RemainingSeconds(test, session); got != 0 {
		t.Errorf("expected 0 after deadline, got %d", got)
	}

	// 不限时恒为 0
	untimed := store.addTest(2, 0, true)
	if got := svc.RemainingSeconds(untimed, session); got != 0 {
		t.Errorf("untimed test must report 0, got %d", got)
	}
}

func TestSubmitTestRecordsTimeSpent(t *testing.T) {
	store := newFakeTestStore()
	store.addTest(1, 30, true)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	grader := &fakeGrader{}
	svc := sessionServiceAt(store, grader, start)

	if _, err := svc.StartTest(7, 1); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	svc.nowFn = func() time.Time { return start.Add(12 * time.Minute) }
	if _, err := svc.SubmitTest(7, 1, map[string]string{"10": "1"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(grader.calls) != 1 {
		t.Fatalf("expected one grading call, got %d", len(grader.calls))
	}
	call := grader.calls[0]
	if call.TimeSpent == nil || *call.TimeSpent != 12*60 {
		t.Errorf("expected timeSpent 720 seconds, got %v", call.TimeSpent)
	}

	// 再次提交被拒绝
	if _, err := svc.SubmitTest(7, 1, nil); !errors.Is(err, util.ErrTestAlreadySubmitted) {
		t.Errorf("expected ErrTestAlreadySubmitted, got %v", err)
	}
}

func TestExpireOverdueSessionsAutoSubmitsDraft(t *testing.T) {
	store := newFakeTestStore()
	store.addTest(1, 30, true)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	grader := &fakeGrader{}
	svc := sessionServiceAt(store, grader, start)

	if _, err := svc.StartTest(7, 1); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := svc.SaveProgress(7, 1, map[string]string{"10": "2"}); err != nil {
		t.Fatalf("save progress failed: %v", err)
	}

	// 到时前巡检不动作
	svc.nowFn = func() time.Time { return start.Add(29 * time.Minute) }
	if n := svc.ExpireOverdueSessions(); n != 0 {
		t.Errorf("expected no expirations before the deadline, got %d", n)
	}

	// 到时后按草稿自动交卷，timeSpent 记满额限时
	svc.nowFn = func() time.Time { return start.Add(31 * time.Minute) }
	if n := svc.ExpireOverdueSessions(); n != 1 {
		t.Fatalf("expected one expiration, got %d", n)
	}

	call := grader.calls[len(grader.calls)-1]
	if call.Answers["10"] != "2" {
		t.Errorf("auto-submit must grade the saved draft, got %v", call.Answers)
	}
	if call.TimeSpent == nil || *call.TimeSpent != 30*60 {
		t.Errorf("expected timeSpent 1800 seconds, got %v", call.TimeSpent)
	}

	session, _ := store.FindSessionByTestAndStudent(1, 7)
	if session.Status != model.SessionAutoSubmitted {
		t.Errorf("expected auto_submitted status, got %s", session.Status)
	}

	// 已关闭的会话不再重复处理
	if n := svc.ExpireOverdueSessions(); n != 0 {
		t.Errorf("closed sessions must not expire twice, got %d", n)
	}
}

func TestWindowStatusAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	cases := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  model.WindowStatus
	}{
		{"open window", &before, &after, model.WindowActive},
		{"not yet started", &after, nil, model.WindowUpcoming},
		{"already over", nil, &before, model.WindowOverdue},
		{"no bounds", nil, nil, model.WindowActive},
		{"only start passed", &before, nil, model.WindowActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &model.Assignment{StartTime: tc.start, EndTime: tc.end}
			if got := WindowStatusAt(a, now); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
