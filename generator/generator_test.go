package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordingLLM struct {
	prompts []Prompt
	reply   string
	err     error
}

func (r *recordingLLM) Complete(_ context.Context, p Prompt) (string, error) {
	r.prompts = append(r.prompts, p)
	return r.reply, r.err
}

func TestPostProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantSummary string
		wantMD      string
		wantErr     error
	}{
		{
			name:        "first paragraph after heading",
			raw:         "## 结论\n\n用 Go 就对了。\n\n其余内容",
			wantSummary: "用 Go 就对了。",
			wantMD:      "## 结论\n\n用 Go 就对了。\n\n其余内容",
		},
		{
			name:        "outer markdown fence is removed",
			raw:         "```markdown\n答案在这里\n```",
			wantSummary: "答案在这里",
			wantMD:      "答案在这里",
		},
		{
			name:        "code blocks are skipped",
			raw:         "```go\nx := 1\n```\n\n解释",
			wantSummary: "解释",
			wantMD:      "```go\nx := 1\n```\n\n解释",
		},
		{
			name:        "headings only falls back to compact text",
			raw:         "# A\n## B",
			wantSummary: "# A ## B",
			wantMD:      "# A\n## B",
		},
		{name: "empty", raw: "  \n ", wantErr: ErrEmptyDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PostProcess(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PostProcess: %v", err)
			}
			if got.Summary != tt.wantSummary || got.Markdown != tt.wantMD {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestTruncate_KeepsRunes(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("知", summaryLimit+10)
	got := truncate(s, summaryLimit)
	if len([]rune(got)) != summaryLimit || !strings.HasPrefix(s, got) {
		t.Fatalf("truncate broke the string: %q", got)
	}
}

func TestBuildInitialPrompt(t *testing.T) {
	t.Parallel()

	p := BuildInitialPrompt(Spec{
		Question:    "为什么 Go 适合写 CLI？",
		Detail:      "想了解工程上的原因",
		Outline:     []string{"部署", "并发"},
		Tone:        "轻松",
		Audience:    "后端工程师",
		Words:       800,
		Constraints: []string{"不要列参考文献"},
	})
	for _, want := range []string{"800", "轻松", "后端工程师", "不要列参考文献", "1. 部署", "2. 并发"} {
		if !strings.Contains(p.System, want) {
			t.Errorf("system prompt missing %q:\n%s", want, p.System)
		}
	}
	if !strings.Contains(p.User, "为什么 Go 适合写 CLI？") || !strings.Contains(p.User, "想了解工程上的原因") {
		t.Errorf("user prompt = %q", p.User)
	}
}

func TestBuildRevisionPrompt_LimitsHistory(t *testing.T) {
	t.Parallel()

	var history []Turn
	history = append(history, Turn{Summary: "首稿"})
	for i := 0; i < maxHistory+3; i++ {
		history = append(history, Turn{Comment: string(rune('a' + i))})
	}
	p := BuildRevisionPrompt(Spec{Question: "q"}, Draft{Markdown: "old"}, "更短一些", history)
	if len(p.History) != maxHistory {
		t.Fatalf("history = %d messages", len(p.History))
	}
	if p.History[len(p.History)-1].Content != string(rune('a'+maxHistory+2)) {
		t.Errorf("latest comment not kept: %+v", p.History)
	}
	if !strings.Contains(p.User, "old") || !strings.Contains(p.User, "更短一些") {
		t.Errorf("user prompt = %q", p.User)
	}
}

func TestSession_ProposeAndRevise(t *testing.T) {
	t.Parallel()

	agent, err := NewAgent(MockLLM{})
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession("s1", Spec{Question: "Go 和 Rust 怎么选？"}, agent)

	if _, err := s.Revise(context.Background(), "更短"); err == nil {
		t.Fatal("expected error revising before a first draft")
	}

	first, err := s.Propose(context.Background())
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if !strings.Contains(first.Markdown, "Go 和 Rust 怎么选？") || first.Summary == "" {
		t.Fatalf("first draft = %+v", first)
	}

	if _, err := s.Revise(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty comment")
	}
	second, err := s.Revise(context.Background(), "多举例子")
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if !strings.Contains(second.Markdown, "多举例子") {
		t.Errorf("revision ignored the comment: %s", second.Markdown)
	}

	draft, history := s.Snapshot()
	if draft != second || len(history) != 2 {
		t.Fatalf("snapshot = %+v, %d turns", draft, len(history))
	}
	if history[0].Summary != "首稿" || history[1].Comment != "多举例子" {
		t.Errorf("history = %+v", history)
	}
}

func TestAgent_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewAgent(nil); err == nil {
		t.Fatal("expected error for nil llm")
	}

	llm := &recordingLLM{err: errors.New("quota")}
	agent, _ := NewAgent(llm)
	if _, err := agent.Generate(context.Background(), Spec{}, nil, nil, ""); err == nil {
		t.Fatal("expected validation error for empty question")
	}
	if len(llm.prompts) != 0 {
		t.Fatal("llm called with an invalid spec")
	}
	if _, err := agent.Generate(context.Background(), Spec{Question: "q"}, nil, nil, ""); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected llm error, got %v", err)
	}
}

func TestOpenAILLM_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "c1", "object": "chat.completion", "created": 1, "model": "test",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "  回答正文  "}}]
		}`))
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Model: "test", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	got, err := llm.Complete(context.Background(), BuildInitialPrompt(Spec{Question: "q"}))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "回答正文" {
		t.Fatalf("got %q", got)
	}
}

func TestNewOpenAILLMFromConfig_Errors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewOpenAILLMFromConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := NewOpenAILLMFromConfig(&LLMSettings{Model: "m"}); err == nil {
		t.Fatal("expected error for missing key")
	}
	if _, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
