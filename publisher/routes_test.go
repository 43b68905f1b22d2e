package publisher

import "testing"

func TestRoutes(t *testing.T) {
	t.Parallel()

	routes, err := NewRoutes(DefaultQuestionAPI, DefaultAnswerAPI+"/")
	if err != nil {
		t.Fatalf("NewRoutes: %v", err)
	}

	tests := []struct {
		name  string
		build func() (string, error)
		want  string
	}{
		{
			name:  "question answers",
			build: func() (string, error) { return routes.QuestionAnswers("42") },
			want:  "https://www.zhihu.com/api/v4/questions/42/answers",
		},
		{
			name:  "question answer",
			build: func() (string, error) { return routes.QuestionAnswer("42", "7") },
			want:  "https://www.zhihu.com/api/v4/questions/42/answers/7",
		},
		{
			name:  "answer",
			build: func() (string, error) { return routes.Answer("9") },
			want:  "https://www.zhihu.com/api/v4/answers/9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRoutes_RejectsRelative(t *testing.T) {
	t.Parallel()

	if _, err := NewRoutes("/questions", DefaultAnswerAPI); err == nil {
		t.Fatal("expected error for relative question api")
	}
}
