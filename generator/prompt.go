package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

// maxHistory 限制修订时带上的历史评论条数。
const maxHistory = 6

// BuildInitialPrompt 生成首稿提示词。
func BuildInitialPrompt(spec Spec) Prompt {
	var sb strings.Builder
	sb.WriteString("你是一名知乎答主，请针对用户给出的问题写一篇回答，直接输出 Markdown，不要额外解释。\n")
	sb.WriteString("要求：\n")
	sb.WriteString("- 第一段直接给出结论，不要复述问题，不要使用一级标题。\n")
	sb.WriteString("- 代码使用带语言名的围栏代码块，公式使用 $...$ 或 $$...$$。\n")
	if spec.Words > 0 {
		sb.WriteString(fmt.Sprintf("- 目标字数约 %d 字（允许 ±15%%）。\n", spec.Words))
	}
	if spec.Tone != "" {
		sb.WriteString(fmt.Sprintf("- 语气：%s。\n", spec.Tone))
	}
	if spec.Audience != "" {
		sb.WriteString(fmt.Sprintf("- 受众：%s。\n", spec.Audience))
	}
	for _, c := range spec.Constraints {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}
	if len(spec.Outline) > 0 {
		sb.WriteString("- 按以下要点组织内容：\n")
		for i, item := range spec.Outline {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
		}
	}

	user := fmt.Sprintf("问题：%s\n", spec.Question)
	if spec.Detail != "" {
		user += fmt.Sprintf("问题描述：%s\n", spec.Detail)
	}
	user += "请输出符合上述要求的完整回答。"

	return Prompt{
		System: sb.String(),
		User:   user,
	}
}

// BuildRevisionPrompt 生成修订提示词。
func BuildRevisionPrompt(spec Spec, prev Draft, comment string, history []Turn) Prompt {
	var sb strings.Builder
	sb.WriteString("你是一名专业编辑，基于用户反馈对知乎回答做最小必要改动，保持 Markdown 结构。\n")
	sb.WriteString("- 保持开头结论段的位置。\n")
	sb.WriteString("- 保留代码块的语言名和公式写法。\n")
	sb.WriteString("- 如果反馈无效或不合理，保持原文。\n")
	for _, c := range spec.Constraints {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}

	user := fmt.Sprintf("问题：%s\n\n当前回答：\n%s\n\n用户反馈：%s\n请输出修订后的完整回答。",
		spec.Question, prev.Markdown, comment)

	// 只带最近几次评论。
	var msgs []Message
	for _, t := range history {
		if t.Comment == "" {
			continue
		}
		msgs = append(msgs, Message{Role: "user", Content: t.Comment})
	}
	if len(msgs) > maxHistory {
		msgs = msgs[len(msgs)-maxHistory:]
	}

	return Prompt{
		System:  sb.String(),
		User:    user,
		History: msgs,
	}
}
