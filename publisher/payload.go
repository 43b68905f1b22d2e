package publisher

import "zhihu_answer_publisher/target"

// PostAnswer is the body for creating an answer under a question.
type PostAnswer struct {
	Content string `json:"content"`
}

// RewardSetting is sent with every answer update. Rewards stay off.
type RewardSetting struct {
	CanReward bool   `json:"can_reward"`
	Tagline   string `json:"tagline"`
}

// UpdateAnswer is the body for replacing an existing answer.
type UpdateAnswer struct {
	Content       string        `json:"content"`
	RewardSetting RewardSetting `json:"reward_setting"`
}

func newUpdateAnswer(content string) UpdateAnswer {
	return UpdateAnswer{Content: content, RewardSetting: RewardSetting{CanReward: false, Tagline: ""}}
}

type createdAnswer struct {
	ID target.ID `json:"id"`
}
