package css

import (
	"regexp"
	"strings"
)

var (
	commentRe        = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	hostRe           = regexp.MustCompile(`:host(?:\(([^()]*)\))?`)
	deepCombinatorRe = regexp.MustCompile(`\s*(?:::ng-deep|/deep/|>>>)\s*`)
	combinatorRe     = regexp.MustCompile(`\s*[>+~]\s*|\s+`)
)

// unscopedAtRules keep their block untouched. Rules nested in any other at-rule block are
// scoped.
var unscopedAtRules = []string{"@keyframes", "@-webkit-keyframes", "@font-face", "@page"}

// ShadowCss rewrites stylesheets for emulated view encapsulation: each compound selector gets
// the content attribute, and :host becomes the host attribute.
type ShadowCss struct{}

// NewShadowCss creates a new ShadowCss instance
func NewShadowCss() *ShadowCss {
	return &ShadowCss{}
}

// ShimCssText scopes every rule of cssText. contentAttr and hostAttr are attribute names such
// as "_ngcontent-%COMP%" and "_nghost-%COMP%".
func (sc *ShadowCss) ShimCssText(cssText, contentAttr, hostAttr string) string {
	cssText = commentRe.ReplaceAllString(cssText, "")
	return ProcessRules(cssText, func(rule *CssRule) *CssRule {
		return sc.scopeRule(rule, contentAttr, hostAttr)
	})
}

func (sc *ShadowCss) scopeRule(rule *CssRule, contentAttr, hostAttr string) *CssRule {
	selector := strings.TrimSpace(rule.Selector)
	if strings.HasPrefix(selector, "@") {
		for _, at := range unscopedAtRules {
			if strings.HasPrefix(selector, at) {
				return rule
			}
		}
		if rule.Content == "" {
			return rule
		}
		return &CssRule{Selector: rule.Selector, Content: sc.ShimCssText(rule.Content, contentAttr, hostAttr)}
	}
	return &CssRule{Selector: sc.scopeSelector(selector, contentAttr, hostAttr), Content: rule.Content}
}

func (sc *ShadowCss) scopeSelector(selector, contentAttr, hostAttr string) string {
	parts := splitSelectorByComma(selector)
	for i, part := range parts {
		parts[i] = sc.scopeComplexSelector(strings.TrimSpace(part), contentAttr, hostAttr)
	}
	return strings.Join(parts, ", ")
}

// scopeComplexSelector scopes each compound selector up to the first deep combinator.
func (sc *ShadowCss) scopeComplexSelector(selector, contentAttr, hostAttr string) string {
	deep := ""
	if loc := deepCombinatorRe.FindStringIndex(selector); loc != nil {
		deep = " " + strings.TrimSpace(selector[loc[1]:])
		selector = selector[:loc[0]]
	}

	var sb strings.Builder
	last := 0
	for _, loc := range combinatorRe.FindAllStringIndex(selector, -1) {
		sb.WriteString(sc.scopeCompound(selector[last:loc[0]], contentAttr, hostAttr))
		combinator := strings.TrimSpace(selector[loc[0]:loc[1]])
		if combinator == "" {
			sb.WriteString(" ")
		} else {
			sb.WriteString(" " + combinator + " ")
		}
		last = loc[1]
	}
	sb.WriteString(sc.scopeCompound(selector[last:], contentAttr, hostAttr))
	if deep != "" && sb.Len() == 0 {
		return strings.TrimSpace(deep)
	}
	return sb.String() + deep
}

func (sc *ShadowCss) scopeCompound(compound, contentAttr, hostAttr string) string {
	if compound == "" {
		return ""
	}
	if strings.Contains(compound, ":host") {
		return hostRe.ReplaceAllStringFunc(compound, func(m string) string {
			inner := hostRe.FindStringSubmatch(m)[1]
			return inner + "[" + hostAttr + "]"
		})
	}
	attr := "[" + contentAttr + "]"
	// The attribute goes before any pseudo class or element.
	if idx := pseudoIndex(compound); idx >= 0 {
		return compound[:idx] + attr + compound[idx:]
	}
	return compound + attr
}

func pseudoIndex(compound string) int {
	depth := 0
	for i := 0; i < len(compound); i++ {
		switch compound[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '\\':
			i++
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitSelectorByComma(selector string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(selector); i++ {
		switch selector[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, selector[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, selector[start:])
}

// CssRule is one rule: a selector, or at-rule prelude, with the text of its block.
type CssRule struct {
	Selector string
	Content  string
}

// RuleCallback rewrites a rule
type RuleCallback func(rule *CssRule) *CssRule

// ProcessRules calls ruleCallback for every top level rule of input and reassembles the text.
// Statements without a block, such as @import, are passed with empty Content.
func ProcessRules(input string, ruleCallback RuleCallback) string {
	var sb strings.Builder
	i := 0
	for i < len(input) {
		start := i
		for i < len(input) && input[i] != '{' && input[i] != ';' && input[i] != '}' {
			if q := input[i]; q == '"' || q == '\'' {
				i = skipString(input, i)
				continue
			}
			i++
		}
		prelude := input[start:i]
		if i >= len(input) || input[i] == '}' {
			sb.WriteString(prelude)
			if i < len(input) {
				sb.WriteByte('}')
				i++
			}
			continue
		}
		lead := prelude[:len(prelude)-len(strings.TrimLeft(prelude, " \t\r\n"))]
		trail := prelude[len(strings.TrimRight(prelude, " \t\r\n")):]
		body := strings.TrimSpace(prelude)
		if input[i] == ';' {
			rule := ruleCallback(&CssRule{Selector: body})
			sb.WriteString(lead + rule.Selector + trail + ";")
			i++
			continue
		}
		end := matchingBrace(input, i)
		rule := ruleCallback(&CssRule{Selector: body, Content: input[i+1 : end]})
		sb.WriteString(lead + rule.Selector + trail + "{" + rule.Content)
		if end < len(input) {
			sb.WriteByte('}')
		}
		i = end + 1
	}
	return sb.String()
}

func skipString(input string, i int) int {
	q := input[i]
	for i++; i < len(input) && input[i] != q; i++ {
		if input[i] == '\\' {
			i++
		}
	}
	return min(i+1, len(input))
}

func matchingBrace(input string, open int) int {
	depth := 0
	for i := open; i < len(input); i++ {
		switch input[i] {
		case '"', '\'':
			i = skipString(input, i) - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(input)
}
