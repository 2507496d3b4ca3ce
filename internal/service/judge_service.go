package service

import (
	"bytes"
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrJudgeUnavailable 判题服务不可达或返回了无法解析的数据
	ErrJudgeUnavailable = errors.New("judge service unavailable")
	// ErrExecutionTimeout 轮询次数耗尽时仍未出结果（仅 strict_timeout 开启时返回）
	ErrExecutionTimeout = errors.New("code execution timed out")
)

// Judge0 状态 id 1（In Queue）和 2（Processing）表示仍在执行，其余为终态
const (
	judgeStatusInQueue    = 1
	judgeStatusProcessing = 2
)

// NoOutputSentinel 各输出字段均为空时的占位输出
const NoOutputSentinel = "No output"

type JudgeService struct {
	cfg          config.Judge0Config
	pollInterval time.Duration
	maxAttempts  int
	strict       bool
	client       *http.Client
}

func NewJudgeService(cfg *config.Config) *JudgeService {
	return &JudgeService{
		cfg:          cfg.Judge0,
		pollInterval: time.Duration(cfg.Engine.PollIntervalSeconds) * time.Second,
		maxAttempts:  cfg.Engine.MaxPollAttempts,
		strict:       cfg.Engine.StrictTimeout,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Reconfigure 配置热更新时替换判题端点和轮询参数，对在途请求无影响
func (s *JudgeService) Reconfigure(cfg *config.Config) {
	s.cfg = cfg.Judge0
	s.pollInterval = time.Duration(cfg.Engine.PollIntervalSeconds) * time.Second
	s.maxAttempts = cfg.Engine.MaxPollAttempts
	s.strict = cfg.Engine.StrictTimeout
}

type judgeSubmitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

type judgeSubmitResponse struct {
	Token string `json:"token"`
}

type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// JudgeResult 判题服务返回的一次执行结果
type JudgeResult struct {
	Token         string      `json:"token"`
	Stdout        string      `json:"stdout"`
	Stderr        string      `json:"stderr"`
	CompileOutput string      `json:"compile_output"`
	Time          string      `json:"time"`
	Status        JudgeStatus `json:"status"`
}

// Pending 仍在排队或执行中
func (r *JudgeResult) Pending() bool {
	return r.Status.ID == judgeStatusInQueue || r.Status.ID == judgeStatusProcessing
}

// Output 归一化为单个输出串，优先级 stdout > stderr > compile_output。
// 该优先级决定了判分时实际比对的内容。
func (r *JudgeResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	if r.CompileOutput != "" {
		return r.CompileOutput
	}
	return NoOutputSentinel
}

// Submit 向判题服务提交一段源码，返回轮询用的 token
func (s *JudgeService) Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error) {
	body, err := json.Marshal(judgeSubmitRequest{
		SourceCode: sourceCode,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return "", err
	}

	url := s.cfg.URL + "/submissions?base64_encoded=false&wait=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		monitoring.JudgeSubmissions.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		monitoring.JudgeSubmissions.WithLabelValues("transport_error").Inc()
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrJudgeUnavailable, resp.StatusCode, string(raw))
	}

	var submitResp judgeSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		monitoring.JudgeSubmissions.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	if submitResp.Token == "" {
		monitoring.JudgeSubmissions.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("%w: empty token", ErrJudgeUnavailable)
	}

	return submitResp.Token, nil
}

// Poll 查询一次执行状态
func (s *JudgeService) Poll(ctx context.Context, token string) (*JudgeResult, error) {
	url := s.cfg.URL + "/submissions/" + token + "?base64_encoded=false&fields=token,stdout,stderr,compile_output,time,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrJudgeUnavailable, resp.StatusCode, string(raw))
	}

	var result JudgeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	return &result, nil
}

// RunToCompletion 提交并轮询直到出结果或轮询预算耗尽。
// 轮询间隔内通过 select 让出调用方 goroutine，不忙等。
// 预算耗尽时默认降级返回最后一次观察到的状态；strict_timeout
// 开启时改为返回 ErrExecutionTimeout。
func (s *JudgeService) RunToCompletion(ctx context.Context, sourceCode string, languageID int, stdin string) (*JudgeResult, error) {
	start := time.Now()

	token, err := s.Submit(ctx, sourceCode, languageID, stdin)
	if err != nil {
		return nil, err
	}

	var last *JudgeResult
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			logger.Log.Warn("judge polling cancelled, abandoning submission",
				zap.String("token", token), zap.Error(ctx.Err()))
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}

		result, err := s.Poll(ctx, token)
		if err != nil {
			monitoring.JudgeSubmissions.WithLabelValues("transport_error").Inc()
			return nil, err
		}
		last = result

		if !result.Pending() {
			monitoring.JudgeSubmissions.WithLabelValues("finished").Inc()
			monitoring.JudgePollDuration.Observe(time.Since(start).Seconds())
			return result, nil
		}
	}

	monitoring.JudgeSubmissions.WithLabelValues("timeout").Inc()
	monitoring.JudgePollDuration.Observe(time.Since(start).Seconds())
	logger.Log.Warn("judge polling budget exhausted",
		zap.String("token", token),
		zap.Int("attempts", s.maxAttempts),
		zap.Bool("strict", s.strict))

	if s.strict {
		return nil, ErrExecutionTimeout
	}
	return last, nil
}

// CaseRun 一条测试用例的执行记录
type CaseRun struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Output   string `json:"output"`
	Passed   bool   `json:"passed"`
}

// RunQuestionCases 在作答阶段按题目的测试用例逐条执行学生代码。
// 没有配置用例时只裸跑一次。判分阶段不会再次执行，
// 这里产出的输出会被封入答案信封随提交一起送去判分。
func (s *JudgeService) RunQuestionCases(ctx context.Context, q *model.Question, sourceCode string) ([]CaseRun, error) {
	cases := q.DecodeTestCases()
	if len(cases) == 0 {
		cases = []model.TestCase{{}}
	}

	runs := make([]CaseRun, 0, len(cases))
	for _, tc := range cases {
		result, err := s.RunToCompletion(ctx, sourceCode, q.LanguageID, tc.Input)
		if err != nil {
			return runs, err
		}
		output := NoOutputSentinel
		if result != nil {
			output = result.Output()
		}
		runs = append(runs, CaseRun{
			Input:    tc.Input,
			Expected: tc.ExpectedOutput,
			Output:   output,
			Passed:   strings.TrimSpace(output) == strings.TrimSpace(tc.ExpectedOutput),
		})
	}
	return runs, nil
}

func (s *JudgeService) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", s.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", s.cfg.Host)
	}
}
