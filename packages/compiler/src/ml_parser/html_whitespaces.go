package ml_parser

import "regexp"

// PreserveWsAttrName keeps whitespace inside the element that carries it. The attribute
// itself is removed.
const PreserveWsAttrName = "ngPreserveWhitespaces"

var wsCharsRe = regexp.MustCompile(`[ \f\n\r\t\v\x{1680}\x{180e}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]+`)

func isWhitespaceOnly(s string) bool {
	return wsCharsRe.ReplaceAllString(s, "") == ""
}

// RemoveWhitespaces drops whitespace-only text nodes and collapses whitespace runs in the
// remaining text to a single space. Content of <pre>, <textarea> and elements marked with
// ngPreserveWhitespaces is kept as is.
func RemoveWhitespaces(result *ParseTreeResult) *ParseTreeResult {
	return &ParseTreeResult{RootNodes: removeWhitespaces(result.RootNodes), Errors: result.Errors}
}

func removeWhitespaces(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			if preserveWhitespaces(n) {
				out = append(out, n)
				continue
			}
			n.Children = removeWhitespaces(n.Children)
			out = append(out, n)
		case *Text:
			if isWhitespaceOnly(n.Value) {
				continue
			}
			n.Value = wsCharsRe.ReplaceAllString(n.Value, " ")
			out = append(out, n)
		default:
			out = append(out, n)
		}
	}
	return out
}

func preserveWhitespaces(el *Element) bool {
	for i, a := range el.Attrs {
		if a.Name == PreserveWsAttrName {
			el.Attrs = append(el.Attrs[:i:i], el.Attrs[i+1:]...)
			return true
		}
	}
	return GetHtmlTagDefinition(el.Name).PreserveContent
}

// StripPreserveWhitespacesAttr removes ngPreserveWhitespaces attributes when whitespace is
// preserved for the whole template.
func StripPreserveWhitespacesAttr(nodes []Node) {
	for _, n := range nodes {
		if el, ok := n.(*Element); ok {
			for i, a := range el.Attrs {
				if a.Name == PreserveWsAttrName {
					el.Attrs = append(el.Attrs[:i:i], el.Attrs[i+1:]...)
					break
				}
			}
			StripPreserveWhitespacesAttr(el.Children)
		}
	}
}
