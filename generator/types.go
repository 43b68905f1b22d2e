package generator

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Spec 描述要回答的问题以及回答的写法。
type Spec struct {
	Question    string   `json:"question"`
	Detail      string   `json:"detail,omitempty"`
	Outline     []string `json:"outline,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Audience    string   `json:"audience,omitempty"`
	Words       int      `json:"words,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
}

func (s Spec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Question, validation.Required),
		validation.Field(&s.Words, validation.Min(0), validation.Max(20000)),
	)
}

// Draft 是模型产出的回答（Markdown 形式），可以直接预览或发布。
type Draft struct {
	// Summary 取回答的首段，便于列表展示。
	Summary  string `json:"summary"`
	Markdown string `json:"markdown"`
}

// Turn 记录一次生成或评论驱动的修订。
type Turn struct {
	Comment   string    `json:"comment"`
	Draft     Draft     `json:"draft"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
