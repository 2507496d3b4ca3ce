package service

import (
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestJudgeService(url string, maxAttempts int, strict bool) *JudgeService {
	return &JudgeService{
		cfg:          config.Judge0Config{URL: url},
		pollInterval: time.Millisecond,
		maxAttempts:  maxAttempts,
		strict:       strict,
		client:       &http.Client{Timeout: time.Second},
	}
}

// fakeJudge 模拟先排队后完成的判题服务
func fakeJudge(t *testing.T, pendingPolls int32, final JudgeResult) *httptest.Server {
	var polls int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/submissions"):
			json.NewEncoder(w).Encode(judgeSubmitResponse{Token: "tok-1"})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/submissions/"):
			if atomic.AddInt32(&polls, 1) <= pendingPolls {
				json.NewEncoder(w).Encode(JudgeResult{
					Token:  "tok-1",
					Status: JudgeStatus{ID: judgeStatusInQueue, Description: "In Queue"},
				})
				return
			}
			json.NewEncoder(w).Encode(final)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRunToCompletionWaitsForResult(t *testing.T) {
	srv := fakeJudge(t, 2, JudgeResult{
		Token:  "tok-1",
		Stdout: "hello\n",
		Time:   "0.02",
		Status: JudgeStatus{ID: 3, Description: "Accepted"},
	})
	defer srv.Close()

	svc := newTestJudgeService(srv.URL, 10, false)
	result, err := svc.RunToCompletion(context.Background(), "print('hello')", 71, "")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Pending() {
		t.Error("expected terminal result")
	}
	if result.Output() != "hello\n" {
		t.Errorf("unexpected output: %q", result.Output())
	}
}

func TestRunToCompletionSoftTimeout(t *testing.T) {
	// 一直排队：默认降级返回最后一次观察到的状态，而不是报错
	srv := fakeJudge(t, 1000, JudgeResult{})
	defer srv.Close()

	svc := newTestJudgeService(srv.URL, 3, false)
	result, err := svc.RunToCompletion(context.Background(), "while True: pass", 71, "")
	if err != nil {
		t.Fatalf("soft timeout must not error, got %v", err)
	}
	if result == nil || !result.Pending() {
		t.Error("expected the last pending snapshot to be returned")
	}
}

func TestRunToCompletionStrictTimeout(t *testing.T) {
	srv := fakeJudge(t, 1000, JudgeResult{})
	defer srv.Close()

	svc := newTestJudgeService(srv.URL, 3, true)
	_, err := svc.RunToCompletion(context.Background(), "while True: pass", 71, "")
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("expected ErrExecutionTimeout, got %v", err)
	}
}

func TestRunToCompletionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestJudgeService(srv.URL, 3, false)
	_, err := svc.RunToCompletion(context.Background(), "x", 71, "")
	if !errors.Is(err, ErrJudgeUnavailable) {
		t.Errorf("expected ErrJudgeUnavailable, got %v", err)
	}
}

func TestRunToCompletionContextCancel(t *testing.T) {
	srv := fakeJudge(t, 1000, JudgeResult{})
	defer srv.Close()

	svc := newTestJudgeService(srv.URL, 1000, false)
	svc.pollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.RunToCompletion(ctx, "x", 71, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestJudgeResultOutputPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		result JudgeResult
		want   string
	}{
		{"stdout first", JudgeResult{Stdout: "out", Stderr: "err", CompileOutput: "cc"}, "out"},
		{"stderr when stdout empty", JudgeResult{Stderr: "err", CompileOutput: "cc"}, "err"},
		{"compile output last", JudgeResult{CompileOutput: "cc"}, "cc"},
		{"sentinel when all empty", JudgeResult{}, NoOutputSentinel},
		// 空白字符串也算非空，优先级按字面值判断
		{"whitespace stdout wins", JudgeResult{Stdout: " ", Stderr: "err"}, " "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.Output(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRunQuestionCases(t *testing.T) {
	srv := fakeJudge(t, 0, JudgeResult{
		Token:  "tok-1",
		Stdout: "7\n",
		Status: JudgeStatus{ID: 3, Description: "Accepted"},
	})
	defer srv.Close()

	cases, _ := json.Marshal([]model.TestCase{
		{Input: "3 4", ExpectedOutput: "7"},
		{Input: "5 2", ExpectedOutput: "8"},
	})
	q := &model.Question{
		QuestionType: model.CodeQuestion,
		TestCases:    cases,
		LanguageID:   71,
	}

	svc := newTestJudgeService(srv.URL, 10, false)
	runs, err := svc.RunQuestionCases(context.Background(), q, "print(sum(map(int, input().split())))")
	if err != nil {
		t.Fatalf("run cases failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 case runs, got %d", len(runs))
	}
	if !runs[0].Passed {
		t.Error("first case should pass after trimming the trailing newline")
	}
	if runs[1].Passed {
		t.Error("second case must fail, output does not match")
	}
}
