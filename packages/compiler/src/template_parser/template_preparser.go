package template_parser

import (
	"strings"

	"ngjit-go/packages/compiler/src/ml_parser"
)

const (
	ngContentSelectAttr = "select"
	linkElement         = "link"
	linkStyleRelAttr    = "rel"
	linkStyleHrefAttr   = "href"
	linkStyleRelValue   = "stylesheet"
	styleElement        = "style"
	scriptElement       = "script"
	ngNonBindableAttr   = "ngNonBindable"
	ngProjectAs         = "ngProjectAs"
)

// PreparsedElementType classifies elements the template parser treats specially.
type PreparsedElementType int

const (
	PreparsedElementTypeNgContent PreparsedElementType = iota
	PreparsedElementTypeStyle
	PreparsedElementTypeStylesheet
	PreparsedElementTypeScript
	PreparsedElementTypeOther
)

// PreparsedElement is what the template parser needs to know about an element before it
// looks at bindings.
type PreparsedElement struct {
	Type        PreparsedElementType
	SelectAttr  string
	HrefAttr    string
	NonBindable bool
	ProjectAs   string
}

// PreparseElement classifies an element and extracts its special attributes.
func PreparseElement(el *ml_parser.Element) *PreparsedElement {
	var selectAttr, hrefAttr, relAttr string
	nonBindable := false
	projectAs := ""

	for _, attr := range el.Attrs {
		switch lc := strings.ToLower(attr.Name); {
		case lc == ngContentSelectAttr:
			selectAttr = attr.Value
		case lc == linkStyleHrefAttr:
			hrefAttr = attr.Value
		case lc == linkStyleRelAttr:
			relAttr = attr.Value
		case attr.Name == ngNonBindableAttr:
			nonBindable = true
		case attr.Name == ngProjectAs:
			projectAs = attr.Value
		}
	}

	nodeName := strings.ToLower(el.Name)
	elementType := PreparsedElementTypeOther
	switch {
	case ml_parser.IsNgContent(nodeName):
		elementType = PreparsedElementTypeNgContent
	case nodeName == styleElement:
		elementType = PreparsedElementTypeStyle
	case nodeName == scriptElement:
		elementType = PreparsedElementTypeScript
	case nodeName == linkElement && relAttr == linkStyleRelValue:
		elementType = PreparsedElementTypeStylesheet
	}

	return &PreparsedElement{
		Type:        elementType,
		SelectAttr:  normalizeNgContentSelect(selectAttr),
		HrefAttr:    hrefAttr,
		NonBindable: nonBindable,
		ProjectAs:   projectAs,
	}
}

func normalizeNgContentSelect(selectAttr string) string {
	if selectAttr == "" {
		return "*"
	}
	return selectAttr
}
