package markdown

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const equationURL = "//www.zhihu.com/equation?tex="

var (
	inlineDelimiters = []passthrough.Delimiters{
		{Open: "$", Close: "$"},
	}

	blockDelimiters = []passthrough.Delimiters{
		{Open: "$$", Close: "$$"},
	}
)

// Equation renders TeX between $ (inline) and $$ (block) delimiters as the
// equation images Zhihu expects in answer bodies.
var Equation goldmark.Extender = equationExtension{}

var _ renderer.NodeRenderer = &equationRenderer{}

type equationExtension struct{}

func (equationExtension) Extend(m goldmark.Markdown) {
	passthrough.New(passthrough.Config{
		InlineDelimiters: inlineDelimiters,
		BlockDelimiters:  blockDelimiters,
	}).Extend(m)

	// Must win over the passthrough extension's own raw renderer.
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&equationRenderer{}, 98),
	))
}

type equationRenderer struct{}

func (r *equationRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(passthrough.KindPassthroughInline, r.renderInline)
	reg.Register(passthrough.KindPassthroughBlock, r.renderBlock)
}

func (r *equationRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*passthrough.PassthroughInline)
	if !ok {
		return ast.WalkSkipChildren, nil
	}
	raw := string(n.Segment.Value(source))
	if !inlineMath(raw, n.Delimiters, source, n.Segment.Stop) {
		_, _ = w.WriteString(EscapeHTML(raw))
		return ast.WalkSkipChildren, nil
	}
	tex := trimDelimiters(raw, n.Delimiters)
	_, _ = w.WriteString(EquationImage(tex, false))
	return ast.WalkSkipChildren, nil
}

// inlineMath reports whether a $...$ match is a formula rather than prose
// such as two prices. The opening $ must not be followed by whitespace, the
// closing $ must not follow whitespace or be followed by a digit.
func inlineMath(raw string, d *passthrough.Delimiters, source []byte, stop int) bool {
	if d == nil || len(raw) < len(d.Open)+len(d.Close)+1 {
		return false
	}
	if isSpace(raw[len(d.Open)]) || isSpace(raw[len(raw)-len(d.Close)-1]) {
		return false
	}
	if stop < len(source) && source[stop] >= '0' && source[stop] <= '9' {
		return false
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (r *equationRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*passthrough.PassthroughBlock)
	if !ok {
		return ast.WalkSkipChildren, nil
	}

	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	tex := trimDelimiters(buf.String(), n.Delimiters)
	_, _ = w.WriteString("<p>")
	_, _ = w.WriteString(EquationImage(tex, true))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkSkipChildren, nil
}

// EquationImage returns the <img> tag Zhihu uses for a formula. Display
// formulas carry a trailing \\ in their TeX.
func EquationImage(tex string, display bool) string {
	if display {
		tex += `\\`
	}
	escaped := strings.ReplaceAll(url.QueryEscape(tex), "+", "%20")
	return fmt.Sprintf(`<img eeimg="1" src="%s%s" alt="%s"/>`, equationURL, escaped, EscapeHTML(tex))
}

func trimDelimiters(raw string, d *passthrough.Delimiters) string {
	raw = strings.TrimSpace(raw)
	if d == nil {
		return raw
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, d.Open), d.Close))
}
