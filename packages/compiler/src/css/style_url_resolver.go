package css

import (
	"net/url"
	"path"
	"regexp"
)

var (
	urlWithSchemaRegexp = regexp.MustCompile(`^([^:/?#]+):`)
	cssImportRegexp     = regexp.MustCompile(`@import\s+(?:url\()?\s*(?:(?:['"]([^'"]*))|([^;\)\s]*))[^;]*;?`)
	cssStripCommentsRe  = regexp.MustCompile(`/\*[\s\S]*?\*/`)
)

// StyleWithImports is a stylesheet with its resolvable @import statements removed and listed
// as absolute URLs.
type StyleWithImports struct {
	Style     string
	StyleUrls []string
}

// IsStyleUrlResolvable reports whether an @import target is loaded by the compiler. Absolute
// paths and URLs with a scheme other than package: or asset: are left to the browser.
func IsStyleUrlResolvable(u string) bool {
	if u == "" || u[0] == '/' {
		return false
	}
	schemeMatch := urlWithSchemaRegexp.FindStringSubmatch(u)
	return schemeMatch == nil || schemeMatch[1] == "package" || schemeMatch[1] == "asset"
}

// ResolveUrl resolves u against baseUrl. Opaque bases such as package:app/x.css resolve
// relative to their directory. Unparseable input is returned unchanged.
func ResolveUrl(baseUrl, u string) string {
	base, err := url.Parse(baseUrl)
	if err != nil {
		return u
	}
	ref, err := url.Parse(u)
	if err != nil {
		return u
	}
	if base.Opaque != "" && !ref.IsAbs() {
		return base.Scheme + ":" + path.Join(path.Dir(base.Opaque), ref.Path)
	}
	return base.ResolveReference(ref).String()
}

// ExtractStyleUrls removes the resolvable @import statements of cssText and returns their
// targets resolved against baseUrl, in source order.
func ExtractStyleUrls(baseUrl, cssText string) StyleWithImports {
	var foundUrls []string
	stripped := cssStripCommentsRe.ReplaceAllString(cssText, "")
	modified := cssImportRegexp.ReplaceAllStringFunc(stripped, func(m string) string {
		sub := cssImportRegexp.FindStringSubmatch(m)
		target := sub[1]
		if target == "" {
			target = sub[2]
		}
		if !IsStyleUrlResolvable(target) {
			return m
		}
		foundUrls = append(foundUrls, ResolveUrl(baseUrl, target))
		return ""
	})
	return StyleWithImports{Style: modified, StyleUrls: foundUrls}
}
