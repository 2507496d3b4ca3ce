package service

import (
	"elearn_backend/internal/model"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionKey 答案查找用的稳定代理键：有题目 ID 用 ID，否则退回位置下标
func QuestionKey(q *model.Question, index int) string {
	if q.ID != 0 {
		return strconv.FormatUint(uint64(q.ID), 10)
	}
	return strconv.Itoa(index)
}

// ValidateAnswer 校验单题答案，纯函数，对合法输入不会 panic。
// hasAnswer 为 false 表示学生未作答，一律判错计 0 分。
func ValidateAnswer(q *model.Question, rawAnswer string, hasAnswer bool) model.QuestionResult {
	result := model.QuestionResult{
		QuestionID:    strconv.FormatUint(uint64(q.ID), 10),
		Answer:        rawAnswer,
		CorrectAnswer: q.CorrectAnswer,
	}

	if !hasAnswer {
		result.Feedback = "未作答"
		result.CorrectAnswer = displayAnswer(q)
		return result
	}

	switch q.QuestionType {
	case model.MultipleChoice:
		validateMultipleChoice(q, rawAnswer, &result)
	case model.FillInBlank:
		validateFillInBlank(q, rawAnswer, &result)
	case model.CodeQuestion:
		validateCode(q, rawAnswer, &result)
	default:
		// 未知题型：该题判 0 分，不影响整卷
		result.Feedback = "unsupported question type: " + string(q.QuestionType)
		return result
	}

	if result.IsCorrect {
		result.Points = q.EffectivePoints()
	}
	return result
}

// validateMultipleChoice 选择题按选项下标的字符串形式精确比对，
// 下标必须按字符串比较，避免数值解析带来的精度/格式漂移。
// 学生端有时提交选项文本而非下标，仅当答案不是合法下标时才
// 尝试按文本解析回下标，否则数字选项文本会劫持下标形式的答案。
func validateMultipleChoice(q *model.Question, rawAnswer string, result *model.QuestionResult) {
	options := q.DecodeOptions()

	selected := rawAnswer
	if idx, err := strconv.Atoi(rawAnswer); err != nil || idx < 0 || idx >= len(options) {
		for i, opt := range options {
			if rawAnswer == opt {
				selected = strconv.Itoa(i)
				break
			}
		}
	}

	result.Answer = selected
	result.IsCorrect = selected == q.CorrectAnswer
	result.CorrectAnswer = displayAnswer(q)

	if result.IsCorrect {
		result.Feedback = "回答正确"
	} else {
		result.Feedback = fmt.Sprintf("正确答案是：%s", result.CorrectAnswer)
	}
}

// validateFillInBlank 填空题忽略大小写和首尾空白，内部空白有效
func validateFillInBlank(q *model.Question, rawAnswer string, result *model.QuestionResult) {
	normalized := strings.TrimSpace(strings.ToLower(rawAnswer))
	expected := strings.TrimSpace(strings.ToLower(q.CorrectAnswer))

	result.IsCorrect = normalized == expected
	if result.IsCorrect {
		result.Feedback = "回答正确"
	} else {
		result.Feedback = fmt.Sprintf("正确答案是：%s", q.CorrectAnswer)
	}
}

// validateCode 代码题的原始答案是 {code, output} JSON 信封；解析失败时
// 把整个原始串当作输出直接比对（降级路径，不算错误）。
// 与填空不同，代码输出只去首尾空白、区分大小写。
func validateCode(q *model.Question, rawAnswer string, result *model.QuestionResult) {
	output := rawAnswer
	var envelope model.CodeAnswer
	if err := json.Unmarshal([]byte(rawAnswer), &envelope); err == nil {
		output = envelope.Output
	}

	result.Answer = output
	result.IsCorrect = strings.TrimSpace(output) == strings.TrimSpace(q.CorrectAnswer)
	if result.IsCorrect {
		result.Feedback = "输出正确"
	} else {
		result.Feedback = "输出与期望结果不一致"
	}
}

// displayAnswer 回显给学生看的标准答案：选择题显示选项文本，其余显示原答案
func displayAnswer(q *model.Question) string {
	if q.QuestionType != model.MultipleChoice {
		return q.CorrectAnswer
	}
	options := q.DecodeOptions()
	if idx, err := strconv.Atoi(q.CorrectAnswer); err == nil && idx >= 0 && idx < len(options) {
		return options[idx]
	}
	return q.CorrectAnswer
}
