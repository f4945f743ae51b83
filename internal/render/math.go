package render

import (
	"bytes"

	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// math registers mathjax's inline parser and renderers with a display block
// parser that also accepts the one-line $$...$$ form. A $$ line followed by
// other text is left to the paragraph and inline parsers.
type math struct{}

func (math) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{fenced: mathjax.NewMathJaxBlockParser()}, 701)),
		parser.WithInlineParsers(util.Prioritized(mathjax.NewInlineMathParser(), 501)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(mathjax.NewMathBlockRenderer(`\[`, `\]`), 501),
		util.Prioritized(mathjax.NewInlineMathRenderer(`\(`, `\)`), 502),
	))
}

var (
	mathDelim         = []byte("$$")
	singleLineMathKey = parser.NewContextKey()
)

type mathBlockParser struct {
	fenced parser.BlockParser
}

func (b *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (b *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], mathDelim) {
		return nil, parser.NoChildren
	}
	rest := line[pos+len(mathDelim):]
	if util.IsBlank(rest) {
		pc.Set(singleLineMathKey, nil)
		return b.fenced.Open(parent, reader, pc)
	}

	body := util.TrimRightSpace(rest)
	if len(body) <= len(mathDelim) || !bytes.HasSuffix(body, mathDelim) {
		return nil, parser.NoChildren
	}
	body = body[:len(body)-len(mathDelim)]
	if util.IsBlank(body) {
		return nil, parser.NoChildren
	}

	start := segment.Start + pos + len(mathDelim)
	node := mathjax.NewMathBlock()
	node.Lines().Append(text.NewSegment(start, start+len(body)))
	reader.Advance(segment.Len() - 1)
	pc.Set(singleLineMathKey, true)
	return node, parser.NoChildren
}

func (b *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	if pc.Get(singleLineMathKey) != nil {
		return parser.Close
	}
	return b.fenced.Continue(node, reader, pc)
}

func (b *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	if pc.Get(singleLineMathKey) != nil {
		pc.Set(singleLineMathKey, nil)
		return
	}
	b.fenced.Close(node, reader, pc)
}

func (b *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (b *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}
