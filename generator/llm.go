package generator

import "context"

// LLMClient 是起草知乎回答时使用的模型接口：输入系统提示与用户提示，
// 返回一份 Markdown 回答正文。Agent 只依赖这一个方法，
// 因此 OpenAI 兼容服务与 MockLLM 可以互换。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 对应配置文件中的 llm 段，cmd 据此选择并构造 LLMClient。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
