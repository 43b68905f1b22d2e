package markdown

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
)

func TestRenderFence(t *testing.T) {
	t.Parallel()

	spans := func(code, lang string) (string, error) {
		return `<span class="k">` + code + `</span>`, nil
	}
	wrapped := func(code, lang string) (string, error) {
		return `<pre class="chroma"><code>` + code + `</code></pre>`, nil
	}
	empty := func(code, lang string) (string, error) {
		return "", nil
	}
	failing := func(code, lang string) (string, error) {
		return "ignored", errors.New("boom")
	}
	panicking := func(code, lang string) (string, error) {
		panic("highlighter exploded")
	}

	tests := []struct {
		name string
		tok  FenceToken
		hl   Highlighter
		want string
	}{
		{
			name: "language without highlighter",
			tok:  FenceToken{Content: "a < b\n", Info: "go"},
			want: "<pre lang=\"go\">a &lt; b\n</pre>\n",
		},
		{
			name: "no info string keeps existing attrs",
			tok:  FenceToken{Content: "x\n", Attrs: []Attr{{Name: "class", Value: "raw"}}},
			want: "<pre class=\"raw\">x\n</pre>\n",
		},
		{
			name: "existing lang is extended",
			tok:  FenceToken{Content: "x", Info: "js", Attrs: []Attr{{Name: "lang", Value: "es6"}}},
			want: "<pre lang=\"es6 js\">x</pre>\n",
		},
		{
			name: "lang appended after other attrs",
			tok:  FenceToken{Content: "x", Info: "py", Attrs: []Attr{{Name: "data-line", Value: "3"}}},
			want: "<pre data-line=\"3\" lang=\"py\">x</pre>\n",
		},
		{
			name: "only first word of info is the language",
			tok:  FenceToken{Content: "x", Info: "  ruby   linenos  "},
			want: "<pre lang=\"ruby\">x</pre>\n",
		},
		{
			name: "escaped info string",
			tok:  FenceToken{Content: "x", Info: `c\+\+`},
			want: "<pre lang=\"c++\">x</pre>\n",
		},
		{
			name: "highlighter output is wrapped",
			tok:  FenceToken{Content: "x", Info: "go"},
			hl:   spans,
			want: "<pre lang=\"go\"><span class=\"k\">x</span></pre>\n",
		},
		{
			name: "highlighter pre block is not double wrapped",
			tok:  FenceToken{Content: "x", Info: "go"},
			hl:   wrapped,
			want: "<pre class=\"chroma\"><code>x</code></pre>\n",
		},
		{
			name: "empty highlighter result falls back to escaping",
			tok:  FenceToken{Content: `"q"`, Info: "go"},
			hl:   empty,
			want: "<pre lang=\"go\">&quot;q&quot;</pre>\n",
		},
		{
			name: "highlighter error falls back to escaping",
			tok:  FenceToken{Content: "<b>", Info: "go"},
			hl:   failing,
			want: "<pre lang=\"go\">&lt;b&gt;</pre>\n",
		},
		{
			name: "highlighter panic falls back to escaping",
			tok:  FenceToken{Content: "&", Info: "go"},
			hl:   panicking,
			want: "<pre lang=\"go\">&amp;</pre>\n",
		},
		{
			name: "empty info adds no lang even with highlighter",
			tok:  FenceToken{Content: "x"},
			hl:   spans,
			want: "<pre><span class=\"k\">x</span></pre>\n",
		},
		{
			name: "attribute values are escaped",
			tok:  FenceToken{Content: "x", Attrs: []Attr{{Name: "title", Value: `a"b`}}},
			want: "<pre title=\"a&quot;b\">x</pre>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RenderFence(tt.tok, tt.hl); got != tt.want {
				t.Errorf("RenderFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderFence_DoesNotMutateToken(t *testing.T) {
	t.Parallel()

	attrs := []Attr{{Name: "lang", Value: "es6"}}
	tok := FenceToken{Content: "x", Info: "js", Attrs: attrs}

	first := RenderFence(tok, nil)
	second := RenderFence(tok, nil)

	if first != second {
		t.Fatalf("repeated renders differ: %q vs %q", first, second)
	}
	if attrs[0].Value != "es6" {
		t.Fatalf("token attrs mutated: %q", attrs[0].Value)
	}
	if len(tok.Attrs) != 1 {
		t.Fatalf("token attrs grew to %d", len(tok.Attrs))
	}
}

func TestRenderFence_LangAccumulates(t *testing.T) {
	t.Parallel()

	f := func(existing, lang string) bool {
		existing = strings.Map(plainRune, existing)
		lang = strings.Join(strings.Fields(strings.Map(plainRune, lang)), "")
		if lang == "" {
			return true
		}
		tok := FenceToken{Content: "x", Info: lang, Attrs: []Attr{{Name: "lang", Value: existing}}}
		return strings.HasPrefix(RenderFence(tok, nil), `<pre lang="`+existing+" "+lang+`">`)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRenderFence_NoHighlighterProperty(t *testing.T) {
	t.Parallel()

	f := func(content, lang string) bool {
		lang = strings.Join(strings.Fields(strings.Map(plainRune, lang)), "")
		if lang == "" {
			return true
		}
		tok := FenceToken{Content: content, Info: lang}
		want := `<pre lang="` + lang + `">` + EscapeHTML(content) + "</pre>\n"
		return RenderFence(tok, nil) == want
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	if got := EscapeHTML(`<a href="x">&</a>`); got != `&lt;a href=&quot;x&quot;&gt;&amp;&lt;/a&gt;` {
		t.Fatalf("EscapeHTML() = %q", got)
	}

	once := EscapeHTML("<")
	if twice := EscapeHTML(once); twice == once {
		t.Fatalf("escaping twice should re-escape, got %q", twice)
	}

	identity := func(s string) bool {
		s = strings.Map(func(r rune) rune {
			switch r {
			case '&', '<', '>', '"':
				return -1
			}
			return r
		}, s)
		return EscapeHTML(s) == s
	}
	if err := quick.Check(identity, nil); err != nil {
		t.Error(err)
	}
}

// plainRune keeps ASCII letters and digits so generated strings survive
// unescaping and attribute escaping unchanged.
func plainRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	}
	return -1
}
