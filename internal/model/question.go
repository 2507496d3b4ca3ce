package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillInBlank    QuestionType = "fill_blank"
	CodeQuestion   QuestionType = "code"
)

// ContentType 区分题目挂在测试还是作业下
type ContentType string

const (
	ContentTest       ContentType = "test"
	ContentAssignment ContentType = "assignment"
)

// Question represents one question of a test or assignment.
// 三种题型共用一张表，QuestionType 做判别字段：
// multiple_choice 使用 Options + CorrectAnswer（选项下标的字符串形式），
// fill_blank 只使用 CorrectAnswer，
// code 使用 CodeTemplate + TestCases + CorrectAnswer（期望 stdout）。
// swagger:model Question
type Question struct {
	BaseModel
	ContentType   ContentType     `gorm:"size:20;index:idx_question_content;not null" json:"contentType"`
	ContentID     uint            `gorm:"index:idx_question_content;type:bigint unsigned" json:"contentId"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Text          string          `gorm:"type:text;not null" json:"text"` // Stem
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer string          `gorm:"type:text" json:"-"`
	Points        int             `gorm:"default:1" json:"points"`
	CodeTemplate  string          `gorm:"type:text" json:"codeTemplate,omitempty"`
	TestCases     json.RawMessage `gorm:"type:json" json:"testCases,omitempty"`
	LanguageID    int             `gorm:"default:0" json:"languageId,omitempty"` // Judge0 language id
	Order         int             `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// TestCase drives one execution run of a code question.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// DecodeOptions 解析选项 JSON，失败时返回空列表
func (q *Question) DecodeOptions() []string {
	var opts []string
	if len(q.Options) == 0 {
		return opts
	}
	_ = json.Unmarshal(q.Options, &opts)
	return opts
}

// DecodeTestCases 解析测试用例 JSON
func (q *Question) DecodeTestCases() []TestCase {
	var cases []TestCase
	if len(q.TestCases) == 0 {
		return cases
	}
	_ = json.Unmarshal(q.TestCases, &cases)
	return cases
}

// EffectivePoints 分值，缺省为 1
func (q *Question) EffectivePoints() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}
