package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Attr is a single name/value pair rendered into a block's open tag.
type Attr struct {
	Name  string
	Value string
}

// FenceToken is one fenced code block as seen by a FenceFunc.
type FenceToken struct {
	Content string
	Info    string
	Attrs   []Attr
}

// Highlighter turns raw code into highlighted HTML. An empty result or an
// error makes the fence fall back to escaped code.
type Highlighter func(code, lang string) (string, error)

// FenceFunc renders a fenced code block to HTML. Renderers are constructed
// with one instead of patching a shared rule table.
type FenceFunc func(tok FenceToken) string

// Fence returns the FenceFunc backed by RenderFence and hl (which may be nil).
func Fence(hl Highlighter) FenceFunc {
	return func(tok FenceToken) string {
		return RenderFence(tok, hl)
	}
}

// RenderFence renders tok as a <pre> block. A language taken from the info
// string is added to the lang attribute; an existing lang value is extended
// with a space, never replaced. tok is not modified.
func RenderFence(tok FenceToken, hl Highlighter) string {
	info := strings.TrimSpace(UnescapeInfo(tok.Info))
	lang := ""
	if info != "" {
		lang = strings.Fields(info)[0]
	}

	highlighted := ""
	if hl != nil {
		highlighted = safeHighlight(hl, tok.Content, lang)
	}
	if highlighted == "" {
		highlighted = EscapeHTML(tok.Content)
	}

	if strings.HasPrefix(highlighted, "<pre") {
		return highlighted + "\n"
	}

	attrs := tok.Attrs
	if info != "" {
		attrs = withLang(tok.Attrs, lang)
	}

	var sb strings.Builder
	sb.WriteString("<pre")
	sb.WriteString(renderAttrs(attrs))
	sb.WriteString(">")
	sb.WriteString(highlighted)
	sb.WriteString("</pre>\n")
	return sb.String()
}

// EscapeHTML escapes &, <, > and ".
func EscapeHTML(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return string(util.EscapeHTML([]byte(s)))
}

// UnescapeInfo removes backslash escapes from a fence info string.
func UnescapeInfo(info string) string {
	if !strings.Contains(info, `\`) {
		return info
	}
	return string(util.UnescapePunctuations([]byte(info)))
}

func safeHighlight(hl Highlighter, code, lang string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
		}
	}()
	res, err := hl(code, lang)
	if err != nil {
		return ""
	}
	return res
}

func withLang(attrs []Attr, lang string) []Attr {
	out := make([]Attr, len(attrs), len(attrs)+1)
	copy(out, attrs)
	for i := range out {
		if out[i].Name == "lang" {
			out[i].Value += " " + lang
			return out
		}
	}
	return append(out, Attr{Name: "lang", Value: lang})
}

func renderAttrs(attrs []Attr) string {
	var sb strings.Builder
	for _, a := range attrs {
		fmt.Fprintf(&sb, ` %s="%s"`, EscapeHTML(a.Name), EscapeHTML(a.Value))
	}
	return sb.String()
}
