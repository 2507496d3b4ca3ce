package service

import (
	"elearn_backend/internal/model"
	"encoding/json"
	"testing"
)

func mcqQuestion(id uint, options []string, correct string) *model.Question {
	raw, _ := json.Marshal(options)
	q := &model.Question{
		QuestionType:  model.MultipleChoice,
		Options:       raw,
		CorrectAnswer: correct,
		Points:        1,
	}
	q.ID = id
	return q
}

func TestValidateMultipleChoiceByIndex(t *testing.T) {
	q := mcqQuestion(1, []string{"红", "绿", "蓝", "黄"}, "2")

	result := ValidateAnswer(q, "2", true)
	if !result.IsCorrect {
		t.Errorf("expected index answer %q to be correct, feedback: %s", "2", result.Feedback)
	}
	if result.Points != 1 {
		t.Errorf("expected 1 point, got %d", result.Points)
	}
}

func TestValidateMultipleChoiceByOptionText(t *testing.T) {
	// 学生端提交选项文本时先解析回下标再比对
	q := mcqQuestion(1, []string{"A", "B", "C", "D"}, "2")

	result := ValidateAnswer(q, "C", true)
	if !result.IsCorrect {
		t.Errorf("expected option text %q to resolve to index 2, feedback: %s", "C", result.Feedback)
	}
	if result.Answer != "2" {
		t.Errorf("expected recorded answer to be normalized index %q, got %q", "2", result.Answer)
	}
}

func TestValidateMultipleChoiceWrongAnswer(t *testing.T) {
	q := mcqQuestion(1, []string{"红", "绿", "蓝"}, "0")

	result := ValidateAnswer(q, "1", true)
	if result.IsCorrect {
		t.Error("expected wrong index to be incorrect")
	}
	if result.Points != 0 {
		t.Errorf("expected 0 points, got %d", result.Points)
	}
	// 回显的正确答案是选项文本而非下标
	if result.CorrectAnswer != "红" {
		t.Errorf("expected display answer %q, got %q", "红", result.CorrectAnswer)
	}
}

func TestValidateMultipleChoiceNumericOptionTexts(t *testing.T) {
	// 选项文本本身是数字时，下标形式的答案不能被文本解析劫持
	q := mcqQuestion(1, []string{"1", "2", "3"}, "2")

	result := ValidateAnswer(q, "2", true)
	if !result.IsCorrect {
		t.Errorf("index answer %q must be taken as an index, feedback: %s", "2", result.Feedback)
	}
	if result.Answer != "2" {
		t.Errorf("expected recorded answer %q, got %q", "2", result.Answer)
	}

	// 下标形式优先："0" 按下标 0 判定为错，即便某个选项叫 "0" 也不改判
	wrong := ValidateAnswer(q, "0", true)
	if wrong.IsCorrect {
		t.Error("index 0 must be incorrect when the correct index is 2")
	}

	// 不是合法下标的文本仍走文本解析："5" 超出范围且不是选项文本
	miss := ValidateAnswer(q, "5", true)
	if miss.IsCorrect {
		t.Error("out-of-range non-option answer must be incorrect")
	}
}

func TestValidateMultipleChoiceIndexAsString(t *testing.T) {
	// 下标比对按字符串进行，"02" 不等于 "2"
	q := mcqQuestion(1, []string{"a", "b", "c"}, "2")

	result := ValidateAnswer(q, "02", true)
	if result.IsCorrect {
		t.Error("expected string comparison, \"02\" must not match \"2\"")
	}
}

func TestValidateFillInBlank(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.FillInBlank,
		CorrectAnswer: "Goroutine",
		Points:        2,
	}
	q.ID = 7

	cases := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact", "Goroutine", true},
		{"case insensitive", "gOROUTINE", true},
		{"surrounding whitespace", "  goroutine \n", true},
		{"inner whitespace matters", "go routine", false},
		{"different word", "thread", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateAnswer(q, tc.answer, true)
			if result.IsCorrect != tc.correct {
				t.Errorf("answer %q: expected correct=%v, feedback: %s", tc.answer, tc.correct, result.Feedback)
			}
			if tc.correct && result.Points != 2 {
				t.Errorf("answer %q: expected 2 points, got %d", tc.answer, result.Points)
			}
		})
	}
}

func TestValidateCodeEnvelope(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.CodeQuestion,
		CorrectAnswer: "Hello, World!",
		Points:        5,
	}
	q.ID = 3

	envelope, _ := json.Marshal(model.CodeAnswer{
		Code:   "print(\"Hello, World!\")",
		Output: "Hello, World!\n",
	})

	result := ValidateAnswer(q, string(envelope), true)
	if !result.IsCorrect {
		t.Errorf("expected trimmed output to match, feedback: %s", result.Feedback)
	}
	if result.Points != 5 {
		t.Errorf("expected 5 points, got %d", result.Points)
	}
	if result.Answer != "Hello, World!\n" {
		t.Errorf("expected recorded answer to be the program output, got %q", result.Answer)
	}
}

func TestValidateCodeCaseSensitive(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.CodeQuestion,
		CorrectAnswer: "Hello",
	}
	q.ID = 3

	envelope, _ := json.Marshal(model.CodeAnswer{Output: "hello"})
	result := ValidateAnswer(q, string(envelope), true)
	if result.IsCorrect {
		t.Error("code output comparison must be case sensitive")
	}
}

func TestValidateCodeRawFallback(t *testing.T) {
	// 非 JSON 信封的原始串按输出直接比对，不算错误
	q := &model.Question{
		QuestionType:  model.CodeQuestion,
		CorrectAnswer: "42",
	}
	q.ID = 9

	result := ValidateAnswer(q, "42\n", true)
	if !result.IsCorrect {
		t.Errorf("expected raw string fallback to match, feedback: %s", result.Feedback)
	}
}

func TestValidateMissingAnswer(t *testing.T) {
	q := mcqQuestion(4, []string{"a", "b"}, "0")

	result := ValidateAnswer(q, "", false)
	if result.IsCorrect {
		t.Error("missing answer must be incorrect")
	}
	if result.Points != 0 {
		t.Errorf("missing answer must score 0, got %d", result.Points)
	}
	if result.Feedback != "未作答" {
		t.Errorf("unexpected feedback: %s", result.Feedback)
	}
}

func TestValidateUnknownQuestionType(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.QuestionType("essay"),
		CorrectAnswer: "anything",
		Points:        10,
	}
	q.ID = 5

	result := ValidateAnswer(q, "anything", true)
	if result.IsCorrect || result.Points != 0 {
		t.Errorf("unknown question type must score 0, got correct=%v points=%d", result.IsCorrect, result.Points)
	}
}

func TestQuestionKey(t *testing.T) {
	withID := &model.Question{}
	withID.ID = 42
	if key := QuestionKey(withID, 3); key != "42" {
		t.Errorf("expected key from ID, got %q", key)
	}

	withoutID := &model.Question{}
	if key := QuestionKey(withoutID, 3); key != "3" {
		t.Errorf("expected positional fallback key, got %q", key)
	}
}
