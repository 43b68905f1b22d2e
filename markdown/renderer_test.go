package markdown

import (
	"strings"
	"testing"
)

func TestRenderers_FenceScenario(t *testing.T) {
	t.Parallel()

	const doc = "```js\nconsole.log(1)\n```"
	const want = "<pre lang=\"js\">console.log(1)\n</pre>\n"

	renderers := map[string]*Renderer{
		"zhihu": NewZhihu(nil),
		"plain": NewPlain(Fence(nil)),
	}
	for name, r := range renderers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Render(doc)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != want {
				t.Fatalf("Render() = %q, want %q", got, want)
			}
		})
	}
}

func TestRenderer_FenceStrategyIsUsed(t *testing.T) {
	t.Parallel()

	var seen []FenceToken
	strategy := func(tok FenceToken) string {
		seen = append(seen, tok)
		return "<fence/>\n"
	}

	got, err := NewZhihu(strategy).Render("text\n\n```go linenos {lang=\"x\" data-line=2}\nfmt.Println()\n```\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "<fence/>") {
		t.Fatalf("strategy output missing: %q", got)
	}
	if len(seen) != 1 {
		t.Fatalf("expected 1 fence, got %d", len(seen))
	}
	tok := seen[0]
	if tok.Content != "fmt.Println()\n" {
		t.Errorf("content = %q", tok.Content)
	}
	if strings.TrimSpace(tok.Info) != "go linenos" {
		t.Errorf("info = %q", tok.Info)
	}
	if len(tok.Attrs) != 2 || tok.Attrs[0] != (Attr{Name: "lang", Value: "x"}) || tok.Attrs[1].Name != "data-line" {
		t.Errorf("attrs = %#v", tok.Attrs)
	}
}

func TestRenderer_InfoAttributesReachOutput(t *testing.T) {
	t.Parallel()

	got, err := NewPlain(nil).Render("```js {lang=\"es6\"}\nx\n```\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "<pre lang=\"es6 js\">x\n</pre>\n" {
		t.Fatalf("Render() = %q", got)
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	t.Parallel()

	doc := "# Title\n\nSome *text*[^1] and $e^x$.\n\n[^1]: note\n\n```py\nprint(1)\n```\n"
	r := NewZhihu(Fence(Chroma("github")))

	first, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := r.Render(doc)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if again != first {
			t.Fatalf("render %d differs", i)
		}
	}
}

func TestRenderer_Flavors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		renderer     *Renderer
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "zhihu inline equation",
			renderer:     NewZhihu(nil),
			input:        "Energy $x^2$ here",
			wantContains: []string{`<img eeimg="1" src="//www.zhihu.com/equation?tex=x%5E2" alt="x^2"/>`},
			wantNot:      []string{"$x^2$"},
		},
		{
			name:         "zhihu block equation",
			renderer:     NewZhihu(nil),
			input:        "$$\na+b\n$$\n",
			wantContains: []string{"<p><img eeimg=\"1\"", "tex=a%2Bb%5C%5C"},
		},
		{
			name:         "zhihu footnote",
			renderer:     NewZhihu(nil),
			input:        "Text[^1]\n\n[^1]: Footnote content",
			wantContains: []string{"<sup", "footnote"},
		},
		{
			name:         "zhihu keeps prices as text",
			renderer:     NewZhihu(nil),
			input:        "It costs $5 and $10 today.",
			wantContains: []string{"<p>It costs $5 and $10 today.</p>"},
			wantNot:      []string{"eeimg"},
		},
		{
			name:         "zhihu space after opening dollar is text",
			renderer:     NewZhihu(nil),
			input:        "from $ 3 to 4$ here",
			wantContains: []string{"from $ 3 to 4$ here"},
			wantNot:      []string{"eeimg"},
		},
		{
			name:         "zhihu digit after closing dollar is text",
			renderer:     NewZhihu(nil),
			input:        "pay $a$10 now",
			wantContains: []string{"pay $a$10 now"},
			wantNot:      []string{"eeimg"},
		},
		{
			name:         "zhihu formula next to prose",
			renderer:     NewZhihu(nil),
			input:        "so $a<b$, done",
			wantContains: []string{`alt="a&lt;b"/>, done`},
		},
		{
			name:         "plain leaves dollars alone",
			renderer:     NewPlain(nil),
			input:        "Cost $5 and $6",
			wantContains: []string{"$5 and $6"},
			wantNot:      []string{"eeimg"},
		},
		{
			name:         "plain table",
			renderer:     NewPlain(nil),
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>"},
		},
		{
			name:         "chroma highlighted fence passes through",
			renderer:     NewPlain(Fence(Chroma("github"))),
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{"<pre", "func"},
			wantNot:      []string{`lang="go"`},
		},
		{
			name:         "unknown language with chroma is escaped",
			renderer:     NewPlain(Fence(Chroma("github"))),
			input:        "```nosuchlang\n<tag>\n```",
			wantContains: []string{`<pre lang="nosuchlang">&lt;tag&gt;`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.renderer.Render(tt.input)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\n%s", want, got)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(got, not) {
					t.Errorf("output should not contain %q\n%s", not, got)
				}
			}
		})
	}
}

func TestEquationImage(t *testing.T) {
	t.Parallel()

	if got := EquationImage("a b", false); got != `<img eeimg="1" src="//www.zhihu.com/equation?tex=a%20b" alt="a b"/>` {
		t.Fatalf("EquationImage() = %q", got)
	}
	if got := EquationImage("x", true); !strings.Contains(got, `alt="x\\"`) {
		t.Fatalf("display equation should end in \\\\: %q", got)
	}
}
