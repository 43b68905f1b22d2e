package markdown

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Chroma returns a Highlighter backed by chroma with inline styles. Its
// output already carries a <pre> wrapper, so RenderFence passes it through.
// Unknown or empty languages produce no output and fall back to escaping.
func Chroma(style string) Highlighter {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	formatter := chromahtml.New(
		chromahtml.TabWidth(4),
		chromahtml.WithClasses(false),
	)

	return func(code, lang string) (string, error) {
		if lang == "" {
			return "", nil
		}
		lexer := lexers.Get(lang)
		if lexer == nil {
			return "", nil
		}
		lexer = chroma.Coalesce(lexer)

		it, err := lexer.Tokenise(nil, code)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		if err := formatter.Format(&sb, s, it); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
}
