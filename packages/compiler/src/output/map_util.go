package output

import (
	"sort"
)

// MapLiteralFromObject builds a map literal with keys in sorted order, so generated programs do
// not depend on map iteration.
func MapLiteralFromObject(obj map[string]OutputExpression, quoted bool) *LiteralMapExpr {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]*LiteralMapEntry, len(keys))
	for i, k := range keys {
		entries[i] = NewLiteralMapEntry(k, obj[k], quoted)
	}
	return NewLiteralMapExpr(entries, nil)
}
