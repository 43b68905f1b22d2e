// Package markdown turns Markdown documents into HTML for preview and for
// publishing to Zhihu. Both renderers share a pluggable fenced code strategy.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates goldmark failed to convert a document.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Renderer converts a Markdown document into an HTML fragment. It holds no
// state besides its configuration, so the same input always yields the same
// output.
type Renderer struct {
	md goldmark.Markdown
}

// NewZhihu creates the renderer used for publishing: GFM, footnotes and
// Zhihu equation images for $...$ and $$...$$.
func NewZhihu(fence FenceFunc) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			Equation,
			&fenceExtension{fence: fenceOrDefault(fence)},
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &Renderer{md: md}
}

// NewPlain creates the renderer used for previews.
func NewPlain(fence FenceFunc) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&fenceExtension{fence: fenceOrDefault(fence)},
		),
	)
	return &Renderer{md: md}
}

// Render converts text to HTML.
func (r *Renderer) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

func fenceOrDefault(fence FenceFunc) FenceFunc {
	if fence == nil {
		return Fence(nil)
	}
	return fence
}

type fenceExtension struct {
	fence FenceFunc
}

func (e *fenceExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&fenceNodeRenderer{fence: e.fence}, 100),
	))
}

type fenceNodeRenderer struct {
	fence FenceFunc
}

func (r *fenceNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fenceNodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*ast.FencedCodeBlock)
	if !ok {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(r.fence(tokenFromNode(n, source)))
	return ast.WalkSkipChildren, nil
}

// tokenFromNode copies everything a FenceFunc needs out of the AST. A trailing
// {...} block in the info string becomes attributes.
func tokenFromNode(n *ast.FencedCodeBlock, source []byte) FenceToken {
	var content strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(source))
	}

	var attrs []Attr
	for _, a := range n.Attributes() {
		attrs = append(attrs, Attr{Name: string(a.Name), Value: attrValue(a.Value)})
	}

	info := ""
	if n.Info != nil {
		raw := n.Info.Segment.Value(source)
		if i := bytes.IndexByte(raw, '{'); i >= 0 {
			if parsed, ok := parser.ParseAttributes(text.NewReader(raw[i:])); ok {
				for _, a := range parsed {
					attrs = append(attrs, Attr{Name: string(a.Name), Value: attrValue(a.Value)})
				}
				raw = raw[:i]
			}
		}
		info = string(raw)
	}

	return FenceToken{
		Content: content.String(),
		Info:    info,
		Attrs:   attrs,
	}
}

func attrValue(v any) string {
	switch tv := v.(type) {
	case []byte:
		return string(tv)
	case string:
		return tv
	default:
		return fmt.Sprint(tv)
	}
}
