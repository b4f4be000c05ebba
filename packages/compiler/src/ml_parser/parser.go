package ml_parser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"ngjit-go/packages/compiler/src/util"
)

// ParseTreeResult represents the result of parsing an HTML tree
type ParseTreeResult struct {
	RootNodes []Node
	Errors    []*util.ParseError
}

// Parser builds an HTML tree from template source. Tokenizing is delegated to
// golang.org/x/net/html; names are recovered in source case from the raw token text because
// component selectors and bindings are case sensitive.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses source, reporting positions against url.
func (p *Parser) Parse(source, url string) *ParseTreeResult {
	file := util.NewParseSourceFile(source, url)
	tb := &treeBuilder{file: file}
	z := html.NewTokenizer(strings.NewReader(source))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		start, end := offset, offset+len(raw)
		offset = end
		switch tt {
		case html.TextToken:
			tb.addText(string(z.Text()), start, end)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := scanTag(file, raw, start)
			tb.startElement(name, attrs, start, end, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := scanTag(file, raw, start)
			tb.endElement(name, start, end)
		case html.CommentToken:
			tb.addNode(&Comment{Value: string(z.Text()), Span: util.SpanOf(file, start, end)})
		}
	}
	return &ParseTreeResult{RootNodes: tb.roots, Errors: tb.errors}
}

type treeBuilder struct {
	file   *util.ParseSourceFile
	roots  []Node
	stack  []*Element
	errors []*util.ParseError
}

func (tb *treeBuilder) parent() *Element {
	if len(tb.stack) == 0 {
		return nil
	}
	return tb.stack[len(tb.stack)-1]
}

func (tb *treeBuilder) addNode(n Node) {
	if parent := tb.parent(); parent != nil {
		parent.Children = append(parent.Children, n)
		return
	}
	tb.roots = append(tb.roots, n)
}

func (tb *treeBuilder) addText(text string, start, end int) {
	if parent := tb.parent(); parent != nil && len(parent.Children) > 0 {
		if prev, ok := parent.Children[len(parent.Children)-1].(*Text); ok {
			prev.Value += text
			prev.Span = util.SpanOf(tb.file, prev.Span.Start.Offset, end)
			return
		}
	}
	tb.addNode(&Text{Value: text, Span: util.SpanOf(tb.file, start, end)})
}

func (tb *treeBuilder) startElement(name string, attrs []*Attribute, start, end int, selfClosing bool) {
	if parent := tb.parent(); parent != nil && GetHtmlTagDefinition(parent.Name).IsClosedByChild(name) {
		tb.stack = tb.stack[:len(tb.stack)-1]
	}
	span := util.SpanOf(tb.file, start, end)
	el := &Element{Name: name, Attrs: attrs, Span: span, StartSourceSpan: span}
	tb.addNode(el)
	if selfClosing || GetHtmlTagDefinition(name).IsVoid {
		el.EndSourceSpan = span
		return
	}
	tb.stack = append(tb.stack, el)
}

func (tb *treeBuilder) endElement(name string, start, end int) {
	endSpan := util.SpanOf(tb.file, start, end)
	if GetHtmlTagDefinition(name).IsVoid {
		tb.errors = append(tb.errors, util.NewParseError(endSpan,
			fmt.Sprintf("Void elements do not have end tags \"%s\"", name)))
		return
	}
	for i := len(tb.stack) - 1; i >= 0; i-- {
		el := tb.stack[i]
		if el.Name == name {
			el.EndSourceSpan = endSpan
			el.Span = util.SpanOf(tb.file, el.StartSourceSpan.Start.Offset, end)
			tb.stack = tb.stack[:i]
			return
		}
		if !GetHtmlTagDefinition(el.Name).ClosedByParent {
			break
		}
	}
	tb.errors = append(tb.errors, util.NewParseError(endSpan, fmt.Sprintf(
		"Unexpected closing tag \"%s\". It may happen when the tag has already been closed by another tag. "+
			"For more info see https://www.w3.org/TR/html5/syntax.html#closing-elements-that-have-implied-end-tags", name)))
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// scanTag reads the tag name and attributes of a raw start or end tag, keeping source case.
// Attribute values are entity-decoded.
func scanTag(file *util.ParseSourceFile, raw string, base int) (string, []*Attribute) {
	i := 1
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	nameStart := i
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	name := raw[nameStart:i]

	var attrs []*Attribute
	for i < len(raw) {
		for i < len(raw) && (isTagSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		keyStart := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && (raw[i] != '/' || i == keyStart) {
			i++
		}
		keyEnd := i
		attr := &Attribute{
			Name:    raw[keyStart:keyEnd],
			KeySpan: util.SpanOf(file, base+keyStart, base+keyEnd),
		}
		j := i
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		attrEnd := keyEnd
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isTagSpace(raw[j]) {
				j++
			}
			var valStart, valEnd int
			if j < len(raw) && (raw[j] == '"' || raw[j] == '\'') {
				quote := raw[j]
				valStart = j + 1
				valEnd = valStart
				for valEnd < len(raw) && raw[valEnd] != quote {
					valEnd++
				}
				attrEnd = valEnd + 1
			} else {
				valStart = j
				valEnd = j
				for valEnd < len(raw) && !isTagSpace(raw[valEnd]) && raw[valEnd] != '>' {
					valEnd++
				}
				attrEnd = valEnd
			}
			attr.Value = html.UnescapeString(raw[valStart:valEnd])
			attr.ValueSpan = util.SpanOf(file, base+valStart, base+valEnd)
			i = attrEnd
		}
		if attrEnd > len(raw) {
			attrEnd = len(raw)
		}
		attr.Span = util.SpanOf(file, base+keyStart, base+attrEnd)
		attrs = append(attrs, attr)
	}
	return name, attrs
}
