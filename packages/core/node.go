package core

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// NodeKind distinguishes the nodes of the in-memory tree.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
	FragmentNode
)

// ListenerFn is the callback shape emitted for (event) bindings. Returning false asks the
// caller to prevent the default action.
type ListenerFn func(event any) any

// Node is a DOM-like node created by the view instructions.
type Node struct {
	Kind     NodeKind
	Name     string
	Text     string
	Attrs    map[string]string
	Props    map[string]any
	Classes  map[string]bool
	Parent   *Node
	Children []*Node

	listeners map[string][]ListenerFn
}

func newElement(name string) *Node {
	return &Node{Kind: ElementNode, Name: name, Attrs: map[string]string{}, Props: map[string]any{}, Classes: map[string]bool{}}
}

func newText(text string) *Node {
	return &Node{Kind: TextNode, Text: text}
}

func newComment(text string) *Node {
	return &Node{Kind: CommentNode, Text: text}
}

// NewFragment returns an empty parentless container node.
func NewFragment() *Node {
	return &Node{Kind: FragmentNode, Name: "#document-fragment"}
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) {
	child.Remove()
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore moves child in front of ref, or to the end when ref is nil or not a child of n.
func (n *Node) InsertBefore(child, ref *Node) {
	if ref == nil || ref.Parent != n {
		n.AppendChild(child)
		return
	}
	child.Remove()
	for i, c := range n.Children {
		if c == ref {
			n.Children = append(n.Children[:i], append([]*Node{child}, n.Children[i:]...)...)
			child.Parent = n
			return
		}
	}
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Listen registers a listener for event.
func (n *Node) Listen(event string, fn ListenerFn) {
	if n.listeners == nil {
		n.listeners = map[string][]ListenerFn{}
	}
	n.listeners[event] = append(n.listeners[event], fn)
}

// Listeners returns the listeners registered for event.
func (n *Node) Listeners(event string) []ListenerFn {
	return n.listeners[event]
}

// Dispatch invokes every listener for event with payload. It reports whether any listener
// returned false.
func (n *Node) Dispatch(event string, payload any) (preventDefault bool, err error) {
	defer recoverRuntime(&err)
	for _, l := range n.listeners[event] {
		if res, ok := l(payload).(bool); ok && !res {
			preventDefault = true
		}
	}
	return preventDefault, nil
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.walk(func(c *Node) {
		if c.Kind == TextNode {
			sb.WriteString(c.Text)
		}
	})
	return sb.String()
}

// FindAll returns the descendant elements named name in document order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c != n && c.Kind == ElementNode && c.Name == name {
			out = append(out, c)
		}
	})
	return out
}

// Find returns the first descendant element named name.
func (n *Node) Find(name string) *Node {
	if all := n.FindAll(name); len(all) > 0 {
		return all[0]
	}
	return nil
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// HTML serializes the subtree. Attributes and classes are sorted so output is stable;
// comments are omitted.
func (n *Node) HTML() string {
	var sb strings.Builder
	n.writeHTML(&sb)
	return sb.String()
}

func (n *Node) writeHTML(sb *strings.Builder) {
	switch n.Kind {
	case TextNode:
		sb.WriteString(html.EscapeString(n.Text))
		return
	case CommentNode:
		return
	case FragmentNode:
		for _, c := range n.Children {
			c.writeHTML(sb)
		}
		return
	}
	sb.WriteString("<" + n.Name)
	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if n.Attrs[k] == "" {
			fmt.Fprintf(sb, " %s", k)
		} else {
			fmt.Fprintf(sb, " %s=%q", k, n.Attrs[k])
		}
	}
	var classes []string
	for c, on := range n.Classes {
		if on {
			classes = append(classes, c)
		}
	}
	if len(classes) > 0 {
		sort.Strings(classes)
		fmt.Fprintf(sb, " class=%q", strings.Join(classes, " "))
	}
	sb.WriteString(">")
	for _, c := range n.Children {
		c.writeHTML(sb)
	}
	sb.WriteString("</" + n.Name + ">")
}
