package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

// 内存假实现，避免单测依赖 MySQL

type fakeQuestionStore struct {
	questions []model.Question
	err       error
}

func (f *fakeQuestionStore) ListByContent(contentType model.ContentType, contentID uint) ([]model.Question, error) {
	return f.questions, f.err
}

type fakeResultStore struct {
	results map[string]*model.Result
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[string]*model.Result)}
}

func (f *fakeResultStore) key(studentID uint, contentType model.ContentType, contentID uint) string {
	return fmt.Sprintf("%d/%s/%d", studentID, contentType, contentID)
}

func (f *fakeResultStore) Upsert(result *model.Result) error {
	f.results[f.key(result.StudentID, result.Type, result.ContentRef())] = result
	return nil
}

func (f *fakeResultStore) FindByStudentAndContent(studentID uint, contentType model.ContentType, contentID uint) (*model.Result, error) {
	r, ok := f.results[f.key(studentID, contentType, contentID)]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

type fakeEnrollment struct {
	enrolled bool
}

func (f *fakeEnrollment) IsStudentEnrolled(studentID, courseID uint) (bool, error) {
	return f.enrolled, nil
}

func testQuestions() []model.Question {
	opts, _ := json.Marshal([]string{"a", "b", "c"})
	mcq := model.Question{
		QuestionType:  model.MultipleChoice,
		Options:       opts,
		CorrectAnswer: "1",
		Points:        1,
	}
	mcq.ID = 10
	fill := model.Question{
		QuestionType:  model.FillInBlank,
		CorrectAnswer: "go",
		Points:        3,
	}
	fill.ID = 11
	return []model.Question{mcq, fill}
}

func TestGradeScoresAsPercentage(t *testing.T) {
	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{questions: testQuestions()}, store, &fakeEnrollment{enrolled: true})

	result, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		CourseID:    2,
		Answers:     map[string]string{"10": "1", "11": "wrong"},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}

	// 1/4 得分 = 25%
	if result.Score != 25 {
		t.Errorf("expected score 25, got %d", result.Score)
	}
	if result.MaxScore != 4 {
		t.Errorf("expected max score 4, got %d", result.MaxScore)
	}
	if result.TestID == nil || *result.TestID != 5 {
		t.Error("expected TestID to be set for test submissions")
	}
	if result.AssignmentID != nil {
		t.Error("expected AssignmentID to stay nil for test submissions")
	}
}

func TestGradeZeroMaxScore(t *testing.T) {
	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{}, store, nil)

	result, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentAssignment,
		ContentID:   9,
		Answers:     map[string]string{},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("empty question set must score 0, got %d", result.Score)
	}
}

func TestGradeRequiresEnrollment(t *testing.T) {
	svc := NewGradingService(&fakeQuestionStore{questions: testQuestions()}, newFakeResultStore(), &fakeEnrollment{enrolled: false})

	_, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		CourseID:    2,
	})
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestGradeResubmissionOverwrites(t *testing.T) {
	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{questions: testQuestions()}, store, nil)

	req := SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		Answers:     map[string]string{"10": "0", "11": "nope"},
	}
	if _, err := svc.Grade(1, req); err != nil {
		t.Fatalf("first grade failed: %v", err)
	}

	req.Answers = map[string]string{"10": "1", "11": "go"}
	second, err := svc.Grade(1, req)
	if err != nil {
		t.Fatalf("second grade failed: %v", err)
	}
	if second.Score != 100 {
		t.Errorf("expected full score on resubmission, got %d", second.Score)
	}

	// 同一 (student, content) 只有一条记录，且是最后一次的
	if len(store.results) != 1 {
		t.Fatalf("expected a single stored result, got %d", len(store.results))
	}
	stored, err := svc.GetResult(1, model.ContentTest, 5)
	if err != nil {
		t.Fatalf("get result failed: %v", err)
	}
	if stored.Score != 100 {
		t.Errorf("stored result must reflect latest submission, got score %d", stored.Score)
	}
}

func TestGradePositionalAnswerFallback(t *testing.T) {
	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{questions: testQuestions()}, store, nil)

	// 按题目顺序下标提交答案
	result, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		Answers:     map[string]string{"0": "1", "1": "GO"},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("expected positional answers to grade fully, got %d", result.Score)
	}
}

func TestGradePositionalAnswersWithOverlappingIDs(t *testing.T) {
	// 题目自增 ID (1,2) 与位置下标键空间重叠时，
	// 按下标提交的整卷不能被 ID 匹配串题
	opts, _ := json.Marshal([]string{"a", "b", "c"})
	mcq := model.Question{
		QuestionType:  model.MultipleChoice,
		Options:       opts,
		CorrectAnswer: "1",
		Points:        1,
	}
	mcq.ID = 1
	fill := model.Question{
		QuestionType:  model.FillInBlank,
		CorrectAnswer: "go",
		Points:        1,
	}
	fill.ID = 2

	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{questions: []model.Question{mcq, fill}}, store, nil)

	result, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		Answers:     map[string]string{"0": "1", "1": "go"},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("positional answers must not be cross-wired by overlapping IDs, got score %d", result.Score)
	}

	// 逐题结果仍以 ID 形式输出代理键
	qrs := result.DecodeAnswers()
	if qrs[0].QuestionID != "1" || qrs[1].QuestionID != "2" {
		t.Errorf("expected ID surrogate keys in results, got %q and %q", qrs[0].QuestionID, qrs[1].QuestionID)
	}
}

func TestGradeMissingAnswersScoreZero(t *testing.T) {
	store := newFakeResultStore()
	svc := NewGradingService(&fakeQuestionStore{questions: testQuestions()}, store, nil)

	result, err := svc.Grade(1, SubmissionRequest{
		ContentType: model.ContentTest,
		ContentID:   5,
		Answers:     map[string]string{"10": "1"},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}

	qrs := result.DecodeAnswers()
	if len(qrs) != 2 {
		t.Fatalf("expected per-question results for every question, got %d", len(qrs))
	}
	if qrs[1].IsCorrect || qrs[1].Points != 0 {
		t.Error("unanswered question must be incorrect with 0 points")
	}
	if qrs[1].Feedback != "未作答" {
		t.Errorf("unexpected feedback for missing answer: %s", qrs[1].Feedback)
	}
}
