package generator

import (
	"context"
	"strings"
)

// MockLLM 一个离线实现，便于本地调试预览和发布流程，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("先说结论：这是一篇自动生成的示例回答。\n\n")
	sb.WriteString("## 背景\n\n")
	sb.WriteString("根据提示生成的内容：\n\n")
	sb.WriteString("```text\n")
	sb.WriteString(prompt.User)
	sb.WriteString("\n```\n\n")
	sb.WriteString("## 示例\n\n")
	sb.WriteString("```go\nfmt.Println(\"hello, zhihu\")\n```\n\n")
	sb.WriteString("复杂度为 $O(n)$。\n")
	for _, h := range prompt.History {
		sb.WriteString("\n> 已根据反馈调整：")
		sb.WriteString(h.Content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
