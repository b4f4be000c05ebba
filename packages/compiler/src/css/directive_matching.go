package css

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	selectorRegexpNot       = 1 // ":not("
	selectorRegexpTag       = 2 // tag with prefix
	selectorRegexpPrefix    = 3 // "." or "#"
	selectorRegexpAttribute = 4 // attribute name
	selectorRegexpValueDQ   = 5 // "value"
	selectorRegexpValueSQ   = 6 // 'value'
	selectorRegexpValue     = 7 // value
	selectorRegexpNotEnd    = 8 // ")"
	selectorRegexpSeparator = 9 // ","
)

var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		`(?:\[([-.\w*\\$]+)(?:=(?:"([^"]*)"|'([^']*)'|([^\]\s]+)))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// CssSelector is one compound selector: an element name, classes, attributes and :not()
// parts. Attrs holds name/value pairs.
type CssSelector struct {
	Element      string
	ClassNames   []string
	Attrs        []string
	NotSelectors []*CssSelector
}

// ParseCssSelector parses a comma separated selector list.
func ParseCssSelector(selector string) ([]*CssSelector, error) {
	var results []*CssSelector
	addResult := func(cssSel *CssSelector) {
		if len(cssSel.NotSelectors) > 0 && cssSel.Element == "" && len(cssSel.ClassNames) == 0 && len(cssSel.Attrs) == 0 {
			cssSel.Element = "*"
		}
		results = append(results, cssSel)
	}

	cssSelector := &CssSelector{}
	current := cssSelector
	inNot := false
	for _, match := range selectorRegexp.FindAllStringSubmatch(selector, -1) {
		if match[selectorRegexpNot] != "" {
			if inNot {
				return nil, fmt.Errorf("Nesting :not in a selector is not allowed")
			}
			inNot = true
			current = &CssSelector{}
			cssSelector.NotSelectors = append(cssSelector.NotSelectors, current)
		}
		if tag := match[selectorRegexpTag]; tag != "" {
			switch match[selectorRegexpPrefix] {
			case "#":
				current.AddAttribute("id", tag[1:])
			case ".":
				current.AddClassName(tag[1:])
			default:
				current.Element = tag
			}
		}
		if attribute := match[selectorRegexpAttribute]; attribute != "" {
			value := match[selectorRegexpValueDQ] + match[selectorRegexpValueSQ] + match[selectorRegexpValue]
			unescaped, err := unescapeAttribute(attribute)
			if err != nil {
				return nil, err
			}
			current.AddAttribute(unescaped, value)
		}
		if match[selectorRegexpNotEnd] != "" {
			inNot = false
			current = cssSelector
		}
		if match[selectorRegexpSeparator] != "" {
			if inNot {
				return nil, fmt.Errorf("Multiple selectors in :not are not supported")
			}
			addResult(cssSelector)
			cssSelector = &CssSelector{}
			current = cssSelector
		}
	}
	addResult(cssSelector)
	return results, nil
}

func unescapeAttribute(attr string) (string, error) {
	var sb strings.Builder
	escaping := false
	for i := 0; i < len(attr); i++ {
		c := attr[i]
		if c == '\\' {
			escaping = true
			continue
		}
		if c == '$' && !escaping {
			return "", fmt.Errorf(`Error in attribute selector "%s". Unescaped "$" is not supported. Please escape with "\$".`, attr)
		}
		escaping = false
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// CreateElementCssSelector builds the selector an element presents to the matcher. attrs are
// name/value pairs; the class attribute contributes class names.
func CreateElementCssSelector(elementName string, attrs [][2]string) *CssSelector {
	sel := &CssSelector{Element: elementName}
	for _, a := range attrs {
		sel.AddAttribute(a[0], a[1])
		if strings.ToLower(a[0]) == "class" {
			for _, cls := range strings.Fields(a[1]) {
				sel.AddClassName(cls)
			}
		}
	}
	return sel
}

// GetMatchingElementTemplate renders an element that this selector matches, e.g.
// "<my-cmp class="a" title="x"></my-cmp>". Selectors without an element use a div.
func (cs *CssSelector) GetMatchingElementTemplate() string {
	tagName := cs.Element
	if tagName == "" || tagName == "*" {
		tagName = "div"
	}
	var sb strings.Builder
	sb.WriteString("<" + tagName)
	if len(cs.ClassNames) > 0 {
		fmt.Fprintf(&sb, ` class="%s"`, strings.Join(cs.ClassNames, " "))
	}
	for i := 0; i < len(cs.Attrs); i += 2 {
		attrName, attrValue := cs.Attrs[i], cs.Attrs[i+1]
		if attrValue != "" {
			fmt.Fprintf(&sb, ` %s="%s"`, attrName, attrValue)
		} else {
			sb.WriteString(" " + attrName)
		}
	}
	if isVoidTag(tagName) {
		sb.WriteString("/>")
	} else {
		sb.WriteString("></" + tagName + ">")
	}
	return sb.String()
}

func isVoidTag(name string) bool {
	switch name {
	case "area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// IsElementSelector reports whether the selector is a bare element name
func (cs *CssSelector) IsElementSelector() bool {
	return cs.Element != "" && len(cs.ClassNames) == 0 && len(cs.Attrs) == 0 && len(cs.NotSelectors) == 0
}

// AddAttribute adds an attribute; values compare case-insensitively.
func (cs *CssSelector) AddAttribute(name string, value string) {
	cs.Attrs = append(cs.Attrs, name, strings.ToLower(value))
}

// AddClassName adds a class name
func (cs *CssSelector) AddClassName(name string) {
	cs.ClassNames = append(cs.ClassNames, strings.ToLower(name))
}

// String returns the string representation of the selector
func (cs *CssSelector) String() string {
	var sb strings.Builder
	sb.WriteString(cs.Element)
	for _, klass := range cs.ClassNames {
		sb.WriteString("." + klass)
	}
	for i := 0; i < len(cs.Attrs); i += 2 {
		name := strings.ReplaceAll(strings.ReplaceAll(cs.Attrs[i], `\`, `\\`), "$", `\$`)
		if value := cs.Attrs[i+1]; value != "" {
			fmt.Fprintf(&sb, "[%s=%s]", name, value)
		} else {
			fmt.Fprintf(&sb, "[%s]", name)
		}
	}
	for _, notSelector := range cs.NotSelectors {
		fmt.Fprintf(&sb, ":not(%s)", notSelector)
	}
	return sb.String()
}

// SelectorMatcher indexes selectors by element, class and attribute so that an element's
// selector can be matched against all of them at once.
type SelectorMatcher[T any] struct {
	elementMap          map[string][]*selectorContext[T]
	elementPartialMap   map[string]*SelectorMatcher[T]
	classMap            map[string][]*selectorContext[T]
	classPartialMap     map[string]*SelectorMatcher[T]
	attrValueMap        map[string]map[string][]*selectorContext[T]
	attrValuePartialMap map[string]map[string]*SelectorMatcher[T]
	listContexts        []*selectorListContext
}

// NewSelectorMatcher creates a new SelectorMatcher
func NewSelectorMatcher[T any]() *SelectorMatcher[T] {
	return &SelectorMatcher[T]{
		elementMap:          map[string][]*selectorContext[T]{},
		elementPartialMap:   map[string]*SelectorMatcher[T]{},
		classMap:            map[string][]*selectorContext[T]{},
		classPartialMap:     map[string]*SelectorMatcher[T]{},
		attrValueMap:        map[string]map[string][]*selectorContext[T]{},
		attrValuePartialMap: map[string]map[string]*SelectorMatcher[T]{},
	}
}

// AddSelectables registers a selector list; the list matches at most once per Match call.
func (sm *SelectorMatcher[T]) AddSelectables(cssSelectors []*CssSelector, cbContext T) {
	var listContext *selectorListContext
	if len(cssSelectors) > 1 {
		listContext = &selectorListContext{}
		sm.listContexts = append(sm.listContexts, listContext)
	}
	for _, cssSelector := range cssSelectors {
		sm.addSelectable(cssSelector, cbContext, listContext)
	}
}

func (sm *SelectorMatcher[T]) addSelectable(cssSelector *CssSelector, cbContext T, listContext *selectorListContext) {
	matcher := sm
	classNames := cssSelector.ClassNames
	attrs := cssSelector.Attrs
	selectable := &selectorContext[T]{selector: cssSelector, cbContext: cbContext, listContext: listContext}

	if element := cssSelector.Element; element != "" {
		if len(attrs) == 0 && len(classNames) == 0 {
			addTerminal(matcher.elementMap, element, selectable)
		} else {
			matcher = addPartial(matcher.elementPartialMap, element)
		}
	}
	for i, className := range classNames {
		if len(attrs) == 0 && i == len(classNames)-1 {
			addTerminal(matcher.classMap, className, selectable)
		} else {
			matcher = addPartial(matcher.classPartialMap, className)
		}
	}
	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if i == len(attrs)-2 {
			values, ok := matcher.attrValueMap[name]
			if !ok {
				values = map[string][]*selectorContext[T]{}
				matcher.attrValueMap[name] = values
			}
			addTerminal(values, value, selectable)
		} else {
			values, ok := matcher.attrValuePartialMap[name]
			if !ok {
				values = map[string]*SelectorMatcher[T]{}
				matcher.attrValuePartialMap[name] = values
			}
			matcher = addPartial(values, value)
		}
	}
}

func addTerminal[T any](m map[string][]*selectorContext[T], name string, selectable *selectorContext[T]) {
	m[name] = append(m[name], selectable)
}

func addPartial[T any](m map[string]*SelectorMatcher[T], name string) *SelectorMatcher[T] {
	matcher, ok := m[name]
	if !ok {
		matcher = NewSelectorMatcher[T]()
		m[name] = matcher
	}
	return matcher
}

// Match calls matchedCallback for every registered selector that matches cssSelector and
// reports whether any did.
func (sm *SelectorMatcher[T]) Match(cssSelector *CssSelector, matchedCallback func(*CssSelector, T)) bool {
	for _, listContext := range sm.listContexts {
		listContext.alreadyMatched = false
	}
	return sm.match(cssSelector, matchedCallback)
}

func (sm *SelectorMatcher[T]) match(cssSelector *CssSelector, matchedCallback func(*CssSelector, T)) bool {
	result := false
	element := cssSelector.Element

	if element != "" {
		result = sm.matchTerminal(sm.elementMap, element, cssSelector, matchedCallback) || result
		result = sm.matchPartial(sm.elementPartialMap, element, cssSelector, matchedCallback) || result
	}

	for _, className := range cssSelector.ClassNames {
		result = sm.matchTerminal(sm.classMap, className, cssSelector, matchedCallback) || result
		result = sm.matchPartial(sm.classPartialMap, className, cssSelector, matchedCallback) || result
	}

	attrs := cssSelector.Attrs
	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if values, ok := sm.attrValueMap[name]; ok {
			if value != "" {
				result = sm.matchTerminal(values, "", cssSelector, matchedCallback) || result
			}
			result = sm.matchTerminal(values, value, cssSelector, matchedCallback) || result
		}
		if values, ok := sm.attrValuePartialMap[name]; ok {
			if value != "" {
				result = sm.matchPartial(values, "", cssSelector, matchedCallback) || result
			}
			result = sm.matchPartial(values, value, cssSelector, matchedCallback) || result
		}
	}
	return result
}

func (sm *SelectorMatcher[T]) matchTerminal(m map[string][]*selectorContext[T], name string, cssSelector *CssSelector, matchedCallback func(*CssSelector, T)) bool {
	if m == nil {
		return false
	}
	selectables := append(append([]*selectorContext[T]{}, m[name]...), m["*"]...)
	result := false
	for _, selectable := range selectables {
		if selectable.finalize(cssSelector, matchedCallback) {
			result = true
		}
	}
	return result
}

func (sm *SelectorMatcher[T]) matchPartial(m map[string]*SelectorMatcher[T], name string, cssSelector *CssSelector, matchedCallback func(*CssSelector, T)) bool {
	nested, ok := m[name]
	if !ok {
		return false
	}
	return nested.match(cssSelector, matchedCallback)
}

type selectorListContext struct {
	alreadyMatched bool
}

type selectorContext[T any] struct {
	selector    *CssSelector
	cbContext   T
	listContext *selectorListContext
}

func (sc *selectorContext[T]) finalize(cssSelector *CssSelector, callback func(*CssSelector, T)) bool {
	result := true
	if len(sc.selector.NotSelectors) > 0 && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		notMatcher := NewSelectorMatcher[struct{}]()
		notMatcher.AddSelectables(sc.selector.NotSelectors, struct{}{})
		result = !notMatcher.Match(cssSelector, nil)
	}
	if result && callback != nil && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		if sc.listContext != nil {
			sc.listContext.alreadyMatched = true
		}
		callback(sc.selector, sc.cbContext)
	}
	return result
}
