package generator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrEmptyDraft is returned when the model produced nothing usable.
var ErrEmptyDraft = errors.New("model returned empty markdown")

var outerFence = regexp.MustCompile("(?s)^```(?:markdown|md)?\\s*\n(.*)\n```$")

const summaryLimit = 120

// PostProcess 清理模型输出并补全 Draft 字段。
func PostProcess(raw string) (Draft, error) {
	md := strings.TrimSpace(raw)
	// 有的模型会把整篇回答包在 ```markdown 里。
	if m := outerFence.FindStringSubmatch(md); m != nil {
		md = strings.TrimSpace(m[1])
	}
	if md == "" {
		return Draft{}, ErrEmptyDraft
	}

	summary := extractSummary(md)
	if summary == "" {
		summary = defaultSummary(md, summaryLimit)
	}
	return Draft{
		Summary:  summary,
		Markdown: md,
	}, nil
}

// 摘要取首个普通段落（跳过标题和代码块）。
func extractSummary(md string) string {
	inFence := false
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return truncate(trimmed, summaryLimit)
	}
	return ""
}

func defaultSummary(md string, limit int) string {
	return truncate(strings.Join(strings.Fields(md), " "), limit)
}

// truncate 按字符截断，避免切坏中文。
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
