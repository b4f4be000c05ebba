package ml_parser

import "strings"

// TagDefinition describes how the tree builder treats one HTML tag.
type TagDefinition struct {
	closedByChildren map[string]bool
	IsVoid           bool
	ClosedByParent   bool
	// PreserveContent keeps whitespace inside the element verbatim.
	PreserveContent bool
}

// IsClosedByChild reports whether an open element of this tag is implicitly closed when a
// child named name starts.
func (d *TagDefinition) IsClosedByChild(name string) bool {
	return d.IsVoid || d.closedByChildren[strings.ToLower(name)]
}

func tagDef(closedBy ...string) *TagDefinition {
	d := &TagDefinition{closedByChildren: map[string]bool{}, ClosedByParent: len(closedBy) > 0}
	for _, c := range closedBy {
		d.closedByChildren[c] = true
	}
	return d
}

var defaultTagDefinition = tagDef()

var tagDefinitions = func() map[string]*TagDefinition {
	defs := map[string]*TagDefinition{}
	for _, tag := range []string{"base", "meta", "area", "embed", "link", "img", "input", "param", "hr", "br", "source", "track", "wbr", "col"} {
		defs[tag] = &TagDefinition{IsVoid: true, ClosedByParent: true}
	}
	defs["p"] = tagDef("address", "article", "aside", "blockquote", "div", "dl", "fieldset",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6", "header",
		"hgroup", "hr", "main", "nav", "ol", "p", "pre", "section", "table", "ul")
	defs["tbody"] = tagDef("tbody", "tfoot")
	defs["tfoot"] = tagDef("tbody")
	defs["tr"] = tagDef("tr")
	defs["td"] = tagDef("td", "th")
	defs["th"] = tagDef("td", "th")
	defs["li"] = tagDef("li")
	defs["dd"] = tagDef("dt", "dd")
	defs["option"] = tagDef("option", "optgroup")
	defs["optgroup"] = tagDef("optgroup")
	defs["pre"] = &TagDefinition{closedByChildren: map[string]bool{}, PreserveContent: true}
	defs["textarea"] = &TagDefinition{closedByChildren: map[string]bool{}, PreserveContent: true}
	return defs
}()

// GetHtmlTagDefinition returns the HTML tag definition for a tag name
func GetHtmlTagDefinition(tagName string) *TagDefinition {
	if def, ok := tagDefinitions[strings.ToLower(tagName)]; ok {
		return def
	}
	return defaultTagDefinition
}

// IsNgContainer checks if a tag name is ng-container
func IsNgContainer(tagName string) bool {
	return tagName == "ng-container"
}

// IsNgContent checks if a tag name is ng-content
func IsNgContent(tagName string) bool {
	return tagName == "ng-content"
}

// IsNgTemplate checks if a tag name is ng-template
func IsNgTemplate(tagName string) bool {
	return tagName == "ng-template"
}
