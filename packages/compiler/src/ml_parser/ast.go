package ml_parser

import "ngjit-go/packages/compiler/src/util"

// Node is a node of the HTML tree.
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	Visit(visitor Visitor, context interface{}) interface{}
}

// Text is a text node. Value has entities decoded.
type Text struct {
	Value string
	Span  *util.ParseSourceSpan
}

func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.Span }

func (t *Text) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitText(t, context)
}

// Attribute is one attribute of an element, with its name in source case.
type Attribute struct {
	Name      string
	Value     string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

func (a *Attribute) SourceSpan() *util.ParseSourceSpan { return a.Span }

func (a *Attribute) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitAttribute(a, context)
}

// Element is an element with its attributes and children.
type Element struct {
	Name            string
	Attrs           []*Attribute
	Children        []Node
	Span            *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.Span }

func (e *Element) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitElement(e, context)
}

// Comment is an HTML comment.
type Comment struct {
	Value string
	Span  *util.ParseSourceSpan
}

func (c *Comment) SourceSpan() *util.ParseSourceSpan { return c.Span }

func (c *Comment) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitComment(c, context)
}

// Visitor visits HTML nodes.
type Visitor interface {
	VisitElement(element *Element, context interface{}) interface{}
	VisitAttribute(attribute *Attribute, context interface{}) interface{}
	VisitText(text *Text, context interface{}) interface{}
	VisitComment(comment *Comment, context interface{}) interface{}
}

// VisitAll visits nodes in order and collects the non-nil results.
func VisitAll(visitor Visitor, nodes []Node, context interface{}) []interface{} {
	var result []interface{}
	for _, n := range nodes {
		if r := n.Visit(visitor, context); r != nil {
			result = append(result, r)
		}
	}
	return result
}
